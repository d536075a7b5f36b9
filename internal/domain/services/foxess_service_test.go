package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
)

func newTestFoxESS(ts *httptest.Server) *FoxESSService {
	cfg := &config.Config{
		FoxESSBaseURL: ts.URL,
		FoxESSAPIKey:  "test-api-key",
		FoxESSTimeout: 5 * time.Second,
	}
	return &FoxESSService{
		Config: cfg,
		client: resty.New().SetBaseURL(ts.URL).SetTimeout(cfg.FoxESSTimeout),
	}
}

func writeEnvelope(w http.ResponseWriter, errno int, msg string, result interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errno":  errno,
		"msg":    msg,
		"result": result,
	})
}

func TestSignRequest(t *testing.T) {
	sig := signRequest("/op/v0/device/list", "key", 1700000000000)

	assert.Len(t, sig, 32, "md5 hex digest is 32 chars")
	assert.Equal(t, sig, signRequest("/op/v0/device/list", "key", 1700000000000), "same inputs sign identically")
	assert.NotEqual(t, sig, signRequest("/op/v0/device/detail", "key", 1700000000000), "path changes the signature")
	assert.NotEqual(t, sig, signRequest("/op/v0/device/list", "other", 1700000000000), "key changes the signature")
	assert.NotEqual(t, sig, signRequest("/op/v0/device/list", "key", 1700000000001), "timestamp changes the signature")
}

func TestFoxESSAuthHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("token")
		timestamp := r.Header.Get("timestamp")
		signature := r.Header.Get("signature")

		assert.Equal(t, "test-api-key", token)
		assert.Equal(t, "en", r.Header.Get("lang"))
		assert.Equal(t, foxessUserAgent, r.Header.Get("User-Agent"))

		ms, err := strconv.ParseInt(timestamp, 10, 64)
		require.NoError(t, err)
		assert.Equal(t, signRequest(r.URL.Path, token, ms), signature, "signature covers path, key and timestamp")

		writeEnvelope(w, 0, "success", map[string]interface{}{"total": 0, "data": []interface{}{}})
	}))
	defer ts.Close()

	s := newTestFoxESS(ts)
	_, err := s.GetDeviceList(context.Background())
	require.NoError(t, err)
}

func TestFoxESSBusinessErrno(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 40256, "device not found", nil)
	}))
	defer ts.Close()

	s := newTestFoxESS(ts)
	_, err := s.GetDeviceDetail(context.Background(), "SN-MISSING")
	require.Error(t, err, "non-zero errno is a failure even on HTTP 200")
	assert.Contains(t, err.Error(), "errno 40256")
	assert.Contains(t, err.Error(), "device not found")
}

func TestFoxESSDeviceList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, foxessDeviceListPath, r.URL.Path)
		writeEnvelope(w, 0, "success", map[string]interface{}{
			"total": 2,
			"data": []map[string]interface{}{
				{"sn": "SN-A", "status": 1, "lastSeen": "2026-08-31 10:00:00"},
				{"sn": "SN-B", "status": 3},
			},
		})
	}))
	defer ts.Close()

	s := newTestFoxESS(ts)
	devices, err := s.GetDeviceList(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "SN-A", devices[0].SN)
	assert.Equal(t, 1, devices[0].Status)
	assert.Equal(t, 3, devices[1].Status)
}

func TestFoxESSDeviceDetailKeepsRaw(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 0, "success", map[string]interface{}{
			"deviceSN":    "SN-A",
			"stationName": "Rooftop 12",
			"status":      2,
			"ratedPower":  "5.0kW",
		})
	}))
	defer ts.Close()

	s := newTestFoxESS(ts)
	detail, err := s.GetDeviceDetail(context.Background(), "SN-A")
	require.NoError(t, err)
	assert.Equal(t, "SN-A", detail.DeviceSN)
	assert.Equal(t, 2, detail.Status)
	assert.Equal(t, "5.0kW", detail.Raw["ratedPower"], "vendor fields survive in the raw map")
}

func TestFoxESSAlarmShapes(t *testing.T) {
	alarm := map[string]interface{}{"sn": "SN-A", "title": "Grid Lost", "time": int64(1756600000000)}

	cases := []struct {
		name   string
		result interface{}
		want   int
	}{
		{"wrapper object", map[string]interface{}{"alarms": []interface{}{alarm, alarm}}, 2},
		{"bare array", []interface{}{alarm}, 1},
		{"single object", alarm, 1},
		{"null", nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, 0, "success", tc.result)
			}))
			defer ts.Close()

			s := newTestFoxESS(ts)
			alarms, err := s.GetDeviceAlarms(context.Background(), "SN-A")
			require.NoError(t, err)
			assert.Len(t, alarms, tc.want)
			if tc.want > 0 {
				assert.Equal(t, "Grid Lost", alarms[0].Title)
			}
		})
	}
}

func TestFoxESSFaultDictionaryShapes(t *testing.T) {
	entry := map[string]interface{}{
		"faults": []map[string]interface{}{
			{"code": 33, "en": "Grid voltage out of range"},
		},
	}

	for _, tc := range []struct {
		name   string
		result interface{}
	}{
		{"array", []interface{}{entry}},
		{"single object", entry},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, 0, "success", tc.result)
			}))
			defer ts.Close()

			s := newTestFoxESS(ts)
			dicts, err := s.GetFaultDictionary(context.Background(), "SN-A")
			require.NoError(t, err)
			require.Len(t, dicts, 1)

			description, found := dicts[0].Lookup(33)
			assert.True(t, found)
			assert.Equal(t, "Grid voltage out of range", description)

			_, found = dicts[0].Lookup(99)
			assert.False(t, found)
		})
	}
}

func TestFoxESSHistoricalPowerPreference(t *testing.T) {
	series := func(variable string, values ...float64) map[string]interface{} {
		data := make([]map[string]interface{}, len(values))
		for i, v := range values {
			data[i] = map[string]interface{}{"time": "2026-08-31 10:00:00", "value": v}
		}
		return map[string]interface{}{"variable": variable, "unit": "kW", "data": data}
	}

	t.Run("prefers generationPower", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, 0, "success", []map[string]interface{}{
				{"deviceSN": "SN-A", "datas": []interface{}{
					series("power", 1.0, 2.0),
					series("generationPower", 3.0, 4.5),
				}},
			})
		}))
		defer ts.Close()

		s := newTestFoxESS(ts)
		power, err := s.GetHistoricalPower(context.Background(), "SN-A", time.Now(), 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 4.5, power, "most recent sample of the preferred variable")
	})

	t.Run("falls through to later variables", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, 0, "success", []map[string]interface{}{
				{"deviceSN": "SN-A", "datas": []interface{}{
					series("loadsPower", 0.8),
					series("generationPower"),
				}},
			})
		}))
		defer ts.Close()

		s := newTestFoxESS(ts)
		power, err := s.GetHistoricalPower(context.Background(), "SN-A", time.Now(), 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 0.8, power, "empty preferred series is skipped")
	})

	t.Run("picks the newest sample regardless of order", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, 0, "success", []map[string]interface{}{
				{"deviceSN": "SN-A", "datas": []interface{}{
					map[string]interface{}{"variable": "generationPower", "unit": "kW", "data": []map[string]interface{}{
						{"time": "2026-08-31 10:45:00", "value": 4.1},
						{"time": "2026-08-31 10:15:00", "value": 2.2},
						{"time": "2026-08-31 10:30:00", "value": 3.3},
					}},
				}},
			})
		}))
		defer ts.Close()

		s := newTestFoxESS(ts)
		power, err := s.GetHistoricalPower(context.Background(), "SN-A", time.Now(), 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 4.1, power, "sample order on the wire does not matter")
	})

	t.Run("zero when nothing matched", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, 0, "success", []interface{}{})
		}))
		defer ts.Close()

		s := newTestFoxESS(ts)
		power, err := s.GetHistoricalPower(context.Background(), "SN-A", time.Now(), 15*time.Minute)
		require.NoError(t, err)
		assert.Zero(t, power)
	})
}

func TestFoxESSRealTimeData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 0, "success", []map[string]interface{}{
			{"deviceSN": "SN-A", "datas": []map[string]interface{}{
				{"variable": "generationPower", "unit": "kW", "value": 3.2},
				{"variable": "currentFault", "value": "No Fault"},
			}},
		})
	}))
	defer ts.Close()

	s := newTestFoxESS(ts)
	vars, err := s.GetRealTimeData(context.Background(), "SN-A")
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "generationPower", vars[0].Variable)
	assert.Equal(t, 3.2, vars[0].Value)
}
