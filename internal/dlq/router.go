package dlq

import (
	"encoding/json"

	"weatherflow/internal/logging"
	"weatherflow/internal/telemetry"
	"weatherflow/sink"
)

// Envelope is the dead-letter message shape: the failure reason, the raw
// payload that caused it, and the trace id for correlation.
type Envelope struct {
	Error           string          `json:"error"`
	OriginalMessage json.RawMessage `json:"original_message"`
	TraceID         string          `json:"trace_id"`
}

// Router sends malformed input to the dead-letter topic. Delivery is
// best-effort: a failed send is logged and the message dropped, never
// retried.
type Router struct {
	out   sink.Adapter
	topic string
}

func NewRouter(out sink.Adapter, topic string) *Router {
	return &Router{out: out, topic: topic}
}

// Route is fire-and-forget.
func (r *Router) Route(payload []byte, reason, traceID string) {
	if traceID == "" {
		traceID = "unknown"
	}
	env := Envelope{
		Error:           reason,
		OriginalMessage: rawOrQuoted(payload),
		TraceID:         traceID,
	}
	body, err := json.Marshal(env)
	if err != nil {
		logging.Trace(traceID).Error("dlq: marshal envelope", "err", err)
		telemetry.DeadLetterFailures.Inc()
		return
	}
	if err := r.out.Push(sink.Message{Topic: r.topic, Value: body}); err != nil {
		logging.Trace(traceID).Error("dlq: delivery failed, dropping message", "err", err)
		telemetry.DeadLetterFailures.Inc()
		return
	}
	telemetry.DeadLettered.Inc()
	logging.Trace(traceID).Info("dlq: message routed", "reason", reason)
}

// rawOrQuoted embeds the payload verbatim when it is valid JSON, otherwise
// as a JSON string, so the envelope itself always stays parseable.
func rawOrQuoted(payload []byte) json.RawMessage {
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}
	quoted, _ := json.Marshal(string(payload))
	return json.RawMessage(quoted)
}
