package sink

import "fmt"

// Message is one payload bound for a topic-like destination. Topic, when
// set, overrides the driver's configured default destination.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Adapter is the common behaviour every sink driver exposes.
type Adapter interface {
	Configure(any) error // driver-specific config struct
	Push(Message) error  // deliver one message
	Close() error        // idempotent
}

// Pinger is optional; drivers that can probe their backend implement it and
// health checks pick it up.
type Pinger interface {
	Ping() error
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
