package kafka

import (
	"fmt"

	"github.com/IBM/sarama"

	"weatherflow/sink"
)

type Config struct {
	Brokers []string
	Topic   string // default destination
	Acks    int16  // 0,1,-1
}

// driver produces synchronously so every Push reports delivery success or
// failure to the caller. Dead-letter routing depends on that signal to know
// when to log-and-drop.
type driver struct {
	cfg Config
	cl  sarama.Client
	p   sarama.SyncProducer
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config")
	}
	d.cfg = cfg

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true

	var err error
	if d.cl, err = sarama.NewClient(cfg.Brokers, sc); err != nil {
		return err
	}
	d.p, err = sarama.NewSyncProducerFromClient(d.cl)
	return err
}

func (d *driver) Push(m sink.Message) error {
	topic := m.Topic
	if topic == "" {
		topic = d.cfg.Topic
	}
	_, _, err := d.p.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.ByteEncoder(m.Key),
		Value: sarama.ByteEncoder(m.Value),
	})
	return err
}

// Ping refreshes broker metadata, the same probe /health uses.
func (d *driver) Ping() error {
	return d.cl.RefreshMetadata()
}

func (d *driver) Close() error {
	if d.p != nil {
		_ = d.p.Close()
	}
	if d.cl != nil {
		return d.cl.Close()
	}
	return nil
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
