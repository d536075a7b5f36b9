package services

import (
	"sort"
	"strconv"
	"strings"
)

// ActiveFault is one decoded fault. Numeric faults carry Code and get their
// Description from the fault dictionary; textual faults reported through the
// currentFault variable carry the raw text as both Label and Description.
type ActiveFault struct {
	Code        int    `json:"code,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	RaisedAt    string `json:"raisedAt,omitempty"`
}

// faultWordBits is the width of one faultCodeN register word
const faultWordBits = 32

// noFaultSentinels are currentFault values that mean the inverter is healthy
var noFaultSentinels = map[string]bool{
	"":         true,
	"no fault": true,
	"normal":   true,
}

// ExtractActiveFaultCodes decodes the fault state out of a real-time
// variable snapshot.
//
// Two encodings coexist on the wire. Older firmware reports a currentFault
// text variable whose non-sentinel value names the fault directly. Newer
// firmware packs faults into 32-bit register words named faultCode1,
// faultCode2, ... (or errorCodeN): bit b of word N set means fault number
// (N-1)*32 + b + 1 is active. Both encodings are decoded and the union is
// returned with numeric codes sorted ascending, textual faults after.
func ExtractActiveFaultCodes(variables []RealtimeVariable) []ActiveFault {
	codes := map[int]bool{}
	var textual []string
	seenText := map[string]bool{}

	for _, v := range variables {
		name := strings.ToLower(v.Variable)
		switch {
		case name == "currentfault":
			text := strings.TrimSpace(asString(v.Value))
			if noFaultSentinels[strings.ToLower(text)] {
				continue
			}
			if !seenText[text] {
				seenText[text] = true
				textual = append(textual, text)
			}
		case strings.Contains(name, "faultcode") || strings.Contains(name, "errorcode"):
			word, ok := asInt(v.Value)
			if !ok || word == 0 {
				continue
			}
			offset := (wordIndex(name) - 1) * faultWordBits
			for bit := 0; bit < faultWordBits; bit++ {
				if word&(1<<bit) != 0 {
					codes[offset+bit+1] = true
				}
			}
		}
	}

	faults := make([]ActiveFault, 0, len(codes)+len(textual))
	sorted := make([]int, 0, len(codes))
	for codeValue := range codes {
		sorted = append(sorted, codeValue)
	}
	sort.Ints(sorted)
	for _, codeValue := range sorted {
		faults = append(faults, ActiveFault{
			Code:  codeValue,
			Label: "Fault " + strconv.Itoa(codeValue),
		})
	}
	for _, text := range textual {
		faults = append(faults, ActiveFault{Label: text, Description: text})
	}
	return faults
}

// wordIndex reads the trailing digits of a faultCodeN variable name.
// An unsuffixed name is word 1.
func wordIndex(name string) int {
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == end {
		return 1
	}
	index, err := strconv.Atoi(name[start:end])
	if err != nil || index < 1 {
		return 1
	}
	return index
}

// asInt coerces a real-time variable value to an integer. The cloud sends
// numbers for some firmware versions and strings for others.
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// asString coerces a real-time variable value to text
func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}
