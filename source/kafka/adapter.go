package kafka

import (
	"context"
	"time"
)

// Message is one raw payload pulled from the source topic.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// EmitFunc hands a message to the pipeline. The driver does not mark the
// offset or pull the next message until it returns, so a synchronous flush
// inside emit pauses consumption.
type EmitFunc func(context.Context, Message) error

type Adapter interface {
	Configure(Config) error
	Run(context.Context, EmitFunc) error
	Close() error
}

// Pinger is optional; drivers that can probe the broker implement it.
type Pinger interface {
	Ping() error
}
