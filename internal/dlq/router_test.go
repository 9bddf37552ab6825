package dlq

import (
	"encoding/json"
	"errors"
	"testing"

	"weatherflow/sink"
)

type captureSink struct {
	pushed []sink.Message
	fail   bool
}

func (c *captureSink) Configure(any) error { return nil }
func (c *captureSink) Push(m sink.Message) error {
	if c.fail {
		return errors.New("broker down")
	}
	c.pushed = append(c.pushed, m)
	return nil
}
func (c *captureSink) Close() error { return nil }

func TestRoute_EnvelopeShape(t *testing.T) {
	cs := &captureSink{}
	r := NewRouter(cs, "weather_data_dlq")

	payload := []byte(`{"station_id":"s1","temperature":999}`)
	r.Route(payload, "temperature out of realistic range", "trace-7")

	if len(cs.pushed) != 1 {
		t.Fatalf("want 1 message, got %d", len(cs.pushed))
	}
	if cs.pushed[0].Topic != "weather_data_dlq" {
		t.Fatalf("wrong topic: %s", cs.pushed[0].Topic)
	}
	var env Envelope
	if err := json.Unmarshal(cs.pushed[0].Value, &env); err != nil {
		t.Fatalf("envelope not json: %v", err)
	}
	if env.Error != "temperature out of realistic range" || env.TraceID != "trace-7" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	var orig map[string]any
	if err := json.Unmarshal(env.OriginalMessage, &orig); err != nil {
		t.Fatalf("original_message not embedded verbatim: %v", err)
	}
	if orig["station_id"] != "s1" {
		t.Fatalf("payload lost: %v", orig)
	}
}

func TestRoute_NonJSONPayloadQuoted(t *testing.T) {
	cs := &captureSink{}
	r := NewRouter(cs, "dlq")

	r.Route([]byte("garbage{{"), "parse failure", "")

	var env Envelope
	if err := json.Unmarshal(cs.pushed[0].Value, &env); err != nil {
		t.Fatalf("envelope not json: %v", err)
	}
	var s string
	if err := json.Unmarshal(env.OriginalMessage, &s); err != nil || s != "garbage{{" {
		t.Fatalf("want quoted payload, got %s", env.OriginalMessage)
	}
	if env.TraceID != "unknown" {
		t.Fatalf("want unknown trace id, got %q", env.TraceID)
	}
}

func TestRoute_DeliveryFailureSwallowed(t *testing.T) {
	cs := &captureSink{fail: true}
	r := NewRouter(cs, "dlq")
	// Must not panic or block; the message is simply dropped.
	r.Route([]byte(`{}`), "reason", "t")
	if len(cs.pushed) != 0 {
		t.Fatalf("nothing should be delivered, got %d", len(cs.pushed))
	}
}
