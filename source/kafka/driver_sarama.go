package kafka

import (
	"context"

	"github.com/IBM/sarama"

	"weatherflow/internal/logging"
)

// SaramaDriver consumes the source topics through a consumer group with
// offset autocommit. An offset is marked only after emit returns, so a
// message is never acknowledged before it has been durably buffered;
// redelivery after a crash is expected and absorbed downstream.
type SaramaDriver struct {
	cfg   Config
	cl    sarama.Client
	group sarama.ConsumerGroup
}

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg = config

	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	switch config.StartFrom {
	case "newest":
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	if d.cl, err = sarama.NewClient(config.Brokers, sc); err != nil {
		return err
	}
	d.group, err = sarama.NewConsumerGroupFromClient(config.GroupID, d.cl)
	return err
}

func (d *SaramaDriver) Run(ctx context.Context, emit EmitFunc) error {
	go func() {
		for err := range d.group.Errors() {
			logging.L().Error("sarama-driver: consumer group error", "err", err)
		}
	}()

	handler := &groupHandler{emit: emit}
	for {
		if err := d.group.Consume(ctx, d.cfg.Topics, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Ping refreshes broker metadata; /health reports degraded when it fails.
func (d *SaramaDriver) Ping() error {
	return d.cl.RefreshMetadata()
}

func (d *SaramaDriver) Close() error {
	_ = d.group.Close()
	return d.cl.Close()
}

type groupHandler struct {
	emit EmitFunc
}

func (*groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	logging.L().Info("sarama-driver: partitions assigned", "claims", sess.Claims())
	return nil
}

func (*groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(
	sess sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	for {
		select {
		case <-sess.Context().Done():
			return sess.Context().Err()
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			m := Message{
				Topic:     msg.Topic,
				Partition: msg.Partition,
				Offset:    msg.Offset,
				Key:       msg.Key,
				Value:     msg.Value,
				Timestamp: msg.Timestamp,
			}
			if err := h.emit(sess.Context(), m); err != nil {
				return err
			}
			sess.MarkMessage(msg, "")
		}
	}
}

func init() { Register("sarama", func() Adapter { return &SaramaDriver{} }) }
