package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codesOf(faults []ActiveFault) []int {
	codes := make([]int, 0, len(faults))
	for _, f := range faults {
		if f.Code != 0 {
			codes = append(codes, f.Code)
		}
	}
	return codes
}

func TestExtractActiveFaultCodes(t *testing.T) {
	t.Run("second word offsets by 32", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "faultCode2", Value: float64(5)},
		})
		assert.Equal(t, []int{33, 35}, codesOf(faults), "bits 0 and 2 of word 2")
	})

	t.Run("first word counts from one", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "faultCode1", Value: float64(3)},
		})
		assert.Equal(t, []int{1, 2}, codesOf(faults))
	})

	t.Run("unsuffixed name is word one", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "errorCode", Value: float64(1)},
		})
		assert.Equal(t, []int{1}, codesOf(faults))
	})

	t.Run("string values parse", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "errorCode1", Value: "3"},
		})
		assert.Equal(t, []int{1, 2}, codesOf(faults))
	})

	t.Run("zero and unparseable values are skipped", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "faultCode1", Value: float64(0)},
			{Variable: "faultCode2", Value: "n/a"},
			{Variable: "faultCode3", Value: nil},
		})
		assert.Empty(t, faults)
	})

	t.Run("duplicate codes collapse", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "faultCode1", Value: float64(1)},
			{Variable: "errorCode1", Value: float64(1)},
		})
		assert.Equal(t, []int{1}, codesOf(faults))
	})

	t.Run("healthy sentinels produce nothing", func(t *testing.T) {
		for _, sentinel := range []string{"", "No Fault", "no fault", "Normal", "  normal  "} {
			faults := ExtractActiveFaultCodes([]RealtimeVariable{
				{Variable: "currentFault", Value: sentinel},
			})
			assert.Empty(t, faults, "sentinel %q", sentinel)
		}
	})

	t.Run("textual fault passes through", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "currentFault", Value: "Grid Lost"},
		})
		require.Len(t, faults, 1)
		assert.Zero(t, faults[0].Code)
		assert.Equal(t, "Grid Lost", faults[0].Label)
		assert.Equal(t, "Grid Lost", faults[0].Description)
	})

	t.Run("numeric and textual faults union", func(t *testing.T) {
		faults := ExtractActiveFaultCodes([]RealtimeVariable{
			{Variable: "currentFault", Value: "Grid Lost"},
			{Variable: "faultCode2", Value: float64(5)},
			{Variable: "generationPower", Value: 3.2},
		})
		require.Len(t, faults, 3)
		assert.Equal(t, []int{33, 35}, codesOf(faults))
		assert.Equal(t, "Grid Lost", faults[2].Label, "textual faults sort after numeric codes")
	})
}

func TestWordIndex(t *testing.T) {
	assert.Equal(t, 1, wordIndex("faultcode"))
	assert.Equal(t, 1, wordIndex("faultcode1"))
	assert.Equal(t, 2, wordIndex("faultcode2"))
	assert.Equal(t, 12, wordIndex("errorcode12"))
	assert.Equal(t, 1, wordIndex("faultcode0"), "word index below one falls back to one")
}
