package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/itfarmkart/CRM-rsolar-backend/internal/infrastructure/config"
	Logger "github.com/itfarmkart/CRM-rsolar-backend/pkg/logger"
)

// FoxESS open-platform endpoint paths
const (
	foxessDeviceListPath   = "/op/v0/device/list"
	foxessDeviceDetailPath = "/op/v0/device/detail"
	foxessRealQueryPath    = "/op/v0/device/real/query"
	foxessHistoryQueryPath = "/op/v0/device/history/query"
	foxessFaultGetPath     = "/op/v0/device/fault/get"
	foxessAlarmListPath    = "/op/v0/alarm/list"
)

// foxessUserAgent identifies us to the vendor. The open platform rejects
// requests without a browser-shaped agent string.
const foxessUserAgent = "Mozilla/5.0 (compatible; rsolar-crm)"

// historyVariablePreference is the order in which history-query variables
// are considered when extracting a power sample
var historyVariablePreference = []string{"generationPower", "power", "pvPower", "loadsPower"}

// InterfaceFoxESSService defines the FoxESS monitoring client interface
type InterfaceFoxESSService interface {
	GetDeviceList(ctx context.Context) ([]FoxESSDevice, error)
	GetDeviceDetail(ctx context.Context, sn string) (*FoxESSDeviceDetail, error)
	GetRealTimeData(ctx context.Context, sn string) ([]RealtimeVariable, error)
	GetHistoricalPower(ctx context.Context, sn string, center time.Time, window time.Duration) (float64, error)
	GetFaultDictionary(ctx context.Context, sn string) ([]FaultDictionary, error)
	GetDeviceAlarms(ctx context.Context, sn string) ([]FoxESSAlarm, error)
}

// FoxESSDevice is one row of the device-list response
type FoxESSDevice struct {
	SN       string `json:"sn"`
	Status   int    `json:"status"`
	LastSeen string `json:"lastSeen"`
}

// FoxESSDeviceDetail is the device-detail response. Raw keeps the untouched
// result object so the dashboard can render vendor fields we do not model.
type FoxESSDeviceDetail struct {
	DeviceSN    string  `json:"deviceSN"`
	ModuleSN    string  `json:"moduleSN"`
	StationID   string  `json:"stationID"`
	StationName string  `json:"stationName"`
	DeviceType  string  `json:"deviceType"`
	Status      int     `json:"status"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`

	Raw map[string]interface{} `json:"-"`
}

// RealtimeVariable is one entry of a real-time query result
type RealtimeVariable struct {
	Variable string      `json:"variable"`
	Name     string      `json:"name"`
	Unit     string      `json:"unit"`
	Value    interface{} `json:"value"`
}

// FoxESSAlarm is one alarm-list entry. Time is milliseconds since epoch;
// zero means the cloud did not report a timestamp.
type FoxESSAlarm struct {
	SN      string `json:"sn"`
	Time    int64  `json:"time"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

// FaultDefinition maps one integer fault code to its description
type FaultDefinition struct {
	Code        int    `json:"code"`
	Description string `json:"en"`
}

// FaultDictionary is one fault-dictionary entry as returned by the cloud
type FaultDictionary struct {
	Faults []FaultDefinition `json:"faults"`
}

// Lookup returns the description for a fault code
func (d FaultDictionary) Lookup(codeValue int) (string, bool) {
	for _, f := range d.Faults {
		if f.Code == codeValue {
			return f.Description, true
		}
	}
	return "", false
}

// foxessEnvelope is the HTTP-200 business envelope of every FoxESS response.
// A non-zero errno is a failure regardless of HTTP status.
type foxessEnvelope struct {
	Errno  int             `json:"errno"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

// alarmList accepts both a bare array and a single object, which the cloud
// uses interchangeably
type alarmList []FoxESSAlarm

func (l *alarmList) UnmarshalJSON(data []byte) error {
	return unmarshalObjectOrArray(data, (*[]FoxESSAlarm)(l))
}

// faultDictionaryList accepts both a bare array and a single object
type faultDictionaryList []FaultDictionary

func (l *faultDictionaryList) UnmarshalJSON(data []byte) error {
	return unmarshalObjectOrArray(data, (*[]FaultDictionary)(l))
}

// unmarshalObjectOrArray decodes data into dest, wrapping a single JSON
// object into a one-element array first. null and absent decode to nil.
func unmarshalObjectOrArray[T any](data []byte, dest *[]T) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*dest = nil
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, dest)
	}
	var single T
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*dest = []T{single}
	return nil
}

// FoxESSService wraps the FoxESS open-platform API
type FoxESSService struct {
	Config *config.Config
	client *resty.Client
	cache  InterfaceRedisService
}

// NewFoxESSService creates a new FoxESS monitoring client. cache may be nil;
// the fault dictionary is then fetched on every call.
func NewFoxESSService(cfg *config.Config, cache InterfaceRedisService) InterfaceFoxESSService {
	client := resty.New().
		SetBaseURL(cfg.FoxESSBaseURL).
		SetTimeout(cfg.FoxESSTimeout).
		SetRetryCount(cfg.FoxESSRetryCount).
		SetRetryWaitTime(cfg.FoxESSRetryWait).
		SetRetryMaxWaitTime(cfg.FoxESSRetryMaxWait)

	return &FoxESSService{
		Config: cfg,
		client: client,
		cache:  cache,
	}
}

// signRequest computes the request signature: lowercase hex md5 over
// path, API key and millisecond timestamp joined by CRLF. The order and
// the separator are fixed by the vendor; a mismatch comes back as a
// non-zero errno, not an HTTP error.
func signRequest(path, apiKey string, timestamp int64) string {
	payload := path + "\r\n" + apiKey + "\r\n" + strconv.FormatInt(timestamp, 10)
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// signedHeaders builds the auth header set with a fresh timestamp. The
// timestamp is backed off by one second so a fast local clock is never
// ahead of the vendor's.
func (s *FoxESSService) signedHeaders(path string) map[string]string {
	timestamp := time.Now().UnixMilli() - 1000
	return map[string]string{
		"token":        s.Config.FoxESSAPIKey,
		"timestamp":    strconv.FormatInt(timestamp, 10),
		"signature":    signRequest(path, s.Config.FoxESSAPIKey, timestamp),
		"lang":         "en",
		"Content-Type": "application/json",
		"User-Agent":   foxessUserAgent,
	}
}

// post issues a signed POST and decodes the business envelope into result
func (s *FoxESSService) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeaders(s.signedHeaders(path)).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("foxess %s: %w", path, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("foxess %s: status %d", path, resp.StatusCode())
	}

	var envelope foxessEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("foxess %s: decoding envelope: %w", path, err)
	}
	if envelope.Errno != 0 {
		return fmt.Errorf("foxess %s: errno %d: %s", path, envelope.Errno, envelope.Msg)
	}
	if result == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("foxess %s: decoding result: %w", path, err)
	}
	return nil
}

// GetDeviceList fetches the full device page mapped to this API key
func (s *FoxESSService) GetDeviceList(ctx context.Context) ([]FoxESSDevice, error) {
	var result struct {
		Total   int            `json:"total"`
		Devices []FoxESSDevice `json:"data"`
	}
	body := map[string]interface{}{"pageSize": 100, "pageIndex": 1}
	if err := s.post(ctx, foxessDeviceListPath, body, &result); err != nil {
		return nil, err
	}
	return result.Devices, nil
}

// GetDeviceDetail fetches the technical specs for one device serial
func (s *FoxESSService) GetDeviceDetail(ctx context.Context, sn string) (*FoxESSDeviceDetail, error) {
	var raw json.RawMessage
	if err := s.post(ctx, foxessDeviceDetailPath, map[string]string{"sn": sn}, &raw); err != nil {
		return nil, err
	}

	var detail FoxESSDeviceDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("foxess device detail: %w", err)
	}
	if err := json.Unmarshal(raw, &detail.Raw); err != nil {
		return nil, fmt.Errorf("foxess device detail: %w", err)
	}
	return &detail, nil
}

// GetRealTimeData fetches the current variable list for one device serial.
// Omitting the variables filter returns every variable the inverter reports.
func (s *FoxESSService) GetRealTimeData(ctx context.Context, sn string) ([]RealtimeVariable, error) {
	var result []struct {
		DeviceSN string             `json:"deviceSN"`
		Datas    []RealtimeVariable `json:"datas"`
	}
	if err := s.post(ctx, foxessRealQueryPath, map[string]string{"sn": sn}, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result[0].Datas, nil
}

// historySample is one timestamped value of a history-query variable
type historySample struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// GetHistoricalPower fetches the power sample closest to center within
// center±window. Variables are tried in preference order; the most recent
// sample of the first variable present wins. Zero when nothing matched.
func (s *FoxESSService) GetHistoricalPower(ctx context.Context, sn string, center time.Time, window time.Duration) (float64, error) {
	body := map[string]interface{}{
		"sn":        sn,
		"variables": historyVariablePreference,
		"begin":     center.Add(-window).UnixMilli(),
		"end":       center.Add(window).UnixMilli(),
	}

	var result []struct {
		DeviceSN string `json:"deviceSN"`
		Datas    []struct {
			Variable string          `json:"variable"`
			Unit     string          `json:"unit"`
			Data     []historySample `json:"data"`
		} `json:"datas"`
	}
	if err := s.post(ctx, foxessHistoryQueryPath, body, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}

	for _, preferred := range historyVariablePreference {
		for _, series := range result[0].Datas {
			if series.Variable != preferred || len(series.Data) == 0 {
				continue
			}
			return latestSample(series.Data).Value, nil
		}
	}
	return 0, nil
}

// latestSample returns the chronologically newest sample. The cloud usually
// sends samples in ascending time order but does not promise one, so ties
// and unparseable timestamps keep the later entry.
func latestSample(samples []historySample) historySample {
	best := samples[0]
	for _, s := range samples[1:] {
		if !sampleTime(s.Time).Before(sampleTime(best.Time)) {
			best = s
		}
	}
	return best
}

// sampleTime parses the leading "2006-01-02 15:04:05" of a history
// timestamp, ignoring any trailing timezone suffix
func sampleTime(value string) time.Time {
	if len(value) >= 19 {
		if t, err := time.Parse("2006-01-02 15:04:05", value[:19]); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GetFaultDictionary fetches the fault-code reference data for one device,
// served from Redis when a TTL is configured
func (s *FoxESSService) GetFaultDictionary(ctx context.Context, sn string) ([]FaultDictionary, error) {
	cacheKey := "foxess:faultdict:" + sn
	if s.cache != nil && s.Config.FaultDictionaryTTL > 0 {
		var cached []FaultDictionary
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var result faultDictionaryList
	if err := s.post(ctx, foxessFaultGetPath, map[string]string{"sn": sn}, &result); err != nil {
		return nil, err
	}

	if s.cache != nil && s.Config.FaultDictionaryTTL > 0 {
		if err := s.cache.Set(ctx, cacheKey, []FaultDictionary(result), s.Config.FaultDictionaryTTL); err != nil {
			Logger.Warning("failed to cache fault dictionary for %s: %v", sn, err)
		}
	}
	return result, nil
}

// GetDeviceAlarms fetches current alarms for one device serial. The cloud
// returns either a wrapper object with an alarms key, a bare array, or a
// single alarm object; all three decode to a plain slice.
func (s *FoxESSService) GetDeviceAlarms(ctx context.Context, sn string) ([]FoxESSAlarm, error) {
	body := map[string]interface{}{"sn": sn, "pageSize": 100, "currentPage": 1}

	var raw json.RawMessage
	if err := s.post(ctx, foxessAlarmListPath, body, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '{' {
		var wrapper struct {
			Alarms alarmList `json:"alarms"`
		}
		if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Alarms != nil {
			return wrapper.Alarms, nil
		}
	}

	var alarms alarmList
	if err := json.Unmarshal(raw, &alarms); err != nil {
		return nil, fmt.Errorf("foxess alarm list: %w", err)
	}
	return alarms, nil
}
