package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is one validated weather reading. Timestamp stays a string in
// RFC 3339 form; together with StationID it forms the natural key used for
// deduplication and upsert conflict resolution.
type Record struct {
	StationID   string  `json:"station_id"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Timestamp   string  `json:"timestamp"`
	TraceID     string  `json:"trace_id,omitempty"`
}

// Key returns the natural key "<station_id>:<timestamp>".
func (r Record) Key() string { return r.StationID + ":" + r.Timestamp }

// Parse decodes a raw payload into a Record. A payload that is not valid
// JSON, or that omits a required field, is malformed input and yields an
// error. Semantic range checks live in Validate.
func Parse(payload []byte) (Record, error) {
	var raw struct {
		StationID   *string  `json:"station_id"`
		Temperature *float64 `json:"temperature"`
		Humidity    *float64 `json:"humidity"`
		WindSpeed   *float64 `json:"wind_speed"`
		Timestamp   *string  `json:"timestamp"`
		TraceID     string   `json:"trace_id"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Record{}, fmt.Errorf("parse: %w", err)
	}
	switch {
	case raw.StationID == nil || *raw.StationID == "":
		return Record{}, fmt.Errorf("parse: missing required field station_id")
	case raw.Temperature == nil:
		return Record{}, fmt.Errorf("parse: missing required field temperature")
	case raw.Humidity == nil:
		return Record{}, fmt.Errorf("parse: missing required field humidity")
	case raw.WindSpeed == nil:
		return Record{}, fmt.Errorf("parse: missing required field wind_speed")
	case raw.Timestamp == nil || *raw.Timestamp == "":
		return Record{}, fmt.Errorf("parse: missing required field timestamp")
	}
	return Record{
		StationID:   *raw.StationID,
		Temperature: *raw.Temperature,
		Humidity:    *raw.Humidity,
		WindSpeed:   *raw.WindSpeed,
		Timestamp:   *raw.Timestamp,
		TraceID:     raw.TraceID,
	}, nil
}

// Validate applies the semantic constraints on an already-parsed Record.
func (r Record) Validate() error {
	if r.Temperature < -100 || r.Temperature > 60 {
		return fmt.Errorf("validate: temperature %.2f out of realistic range [-100, 60]", r.Temperature)
	}
	if r.Humidity < 0 || r.Humidity > 100 {
		return fmt.Errorf("validate: humidity %.2f out of realistic range [0, 100]", r.Humidity)
	}
	if r.WindSpeed < 0 {
		return fmt.Errorf("validate: wind speed %.2f cannot be negative", r.WindSpeed)
	}
	if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
		return fmt.Errorf("validate: timestamp %q is not RFC 3339", r.Timestamp)
	}
	return nil
}

// ExtractTraceID best-effort pulls a trace id out of a payload that failed
// parsing, so the DLQ envelope keeps its correlation id when possible.
func ExtractTraceID(payload []byte) string {
	var probe struct {
		TraceID string `json:"trace_id"`
	}
	if err := json.Unmarshal(payload, &probe); err == nil && probe.TraceID != "" {
		return probe.TraceID
	}
	return "unknown"
}
