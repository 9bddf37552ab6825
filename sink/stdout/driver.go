package stdout

import (
	"fmt"
	"sync/atomic"

	"weatherflow/sink"
)

// driver prints messages to stdout. Useful for watching the DLQ stream
// locally without a broker.
type driver struct {
	seq uint64
}

func (d *driver) Configure(any) error { return nil }

func (d *driver) Push(m sink.Message) error {
	n := atomic.AddUint64(&d.seq, 1)
	fmt.Printf("[sink %06d] %s: %s\n", n, m.Topic, m.Value)
	return nil
}

func (d *driver) Close() error { return nil }

func init() { sink.Register("stdout", func() sink.Adapter { return &driver{} }) }
