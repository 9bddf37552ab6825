package model

import (
	"strings"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	payload := []byte(`{"station_id":"station1","temperature":21.5,"humidity":60,"wind_speed":3.2,"timestamp":"2026-08-30T12:00:00Z","trace_id":"abc"}`)
	rec, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.StationID != "station1" || rec.Temperature != 21.5 || rec.TraceID != "abc" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rec.Key() != "station1:2026-08-30T12:00:00Z" {
		t.Fatalf("unexpected key: %q", rec.Key())
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"not json", `{{not-json`, "parse:"},
		{"missing station", `{"temperature":1,"humidity":1,"wind_speed":1,"timestamp":"2026-08-30T12:00:00Z"}`, "station_id"},
		{"missing temperature", `{"station_id":"s","humidity":1,"wind_speed":1,"timestamp":"2026-08-30T12:00:00Z"}`, "temperature"},
		{"missing humidity", `{"station_id":"s","temperature":1,"wind_speed":1,"timestamp":"2026-08-30T12:00:00Z"}`, "humidity"},
		{"missing wind", `{"station_id":"s","temperature":1,"humidity":1,"timestamp":"2026-08-30T12:00:00Z"}`, "wind_speed"},
		{"missing timestamp", `{"station_id":"s","temperature":1,"humidity":1,"wind_speed":1}`, "timestamp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.payload)); err == nil {
				t.Fatal("expected error")
			} else if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	base := Record{StationID: "s", Temperature: 10, Humidity: 50, WindSpeed: 1, Timestamp: "2026-08-30T12:00:00Z"}

	cases := []struct {
		name   string
		mutate func(*Record)
		ok     bool
	}{
		{"in range", func(*Record) {}, true},
		{"temperature too high", func(r *Record) { r.Temperature = 999 }, false},
		{"temperature too low", func(r *Record) { r.Temperature = -101 }, false},
		{"temperature lower bound", func(r *Record) { r.Temperature = -100 }, true},
		{"humidity negative", func(r *Record) { r.Humidity = -0.1 }, false},
		{"humidity over 100", func(r *Record) { r.Humidity = 100.5 }, false},
		{"wind negative", func(r *Record) { r.WindSpeed = -1 }, false},
		{"bad timestamp", func(r *Record) { r.Timestamp = "yesterday" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := base
			tc.mutate(&rec)
			err := rec.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestExtractTraceID(t *testing.T) {
	if got := ExtractTraceID([]byte(`{"trace_id":"t-1","temperature":"oops"}`)); got != "t-1" {
		t.Fatalf("want t-1, got %q", got)
	}
	if got := ExtractTraceID([]byte(`not json at all`)); got != "unknown" {
		t.Fatalf("want unknown, got %q", got)
	}
}
