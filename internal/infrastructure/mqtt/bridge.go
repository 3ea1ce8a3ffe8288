package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/adaptive-cover/internal/audit"
	"github.com/nerrad567/adaptive-cover/internal/coordinator"
	"github.com/nerrad567/adaptive-cover/internal/entity"
)

// commandTimeout bounds one set command, including the coordinator refresh.
const commandTimeout = 30 * time.Second

// Publisher is the publishing side of Client.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// Subscriber is the subscribing side of Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler MessageHandler) error
}

// ValueSetter resolves and sets number entity values.
type ValueSetter interface {
	FindByKey(entryID, key string) (entity.State, error)
	SetValue(ctx context.Context, uniqueID string, v float64) error
}

// Bridge mirrors entity and cover state to MQTT and applies set commands.
type Bridge struct {
	pub    Publisher
	logger Logger
}

// NewBridge creates a bridge publishing through pub.
func NewBridge(pub Publisher) *Bridge {
	return &Bridge{pub: pub, logger: noopLogger{}}
}

// SetLogger sets the logger.
func (b *Bridge) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	b.logger = logger
}

// HandleState publishes s as retained state. It implements entity.StateListener.
func (b *Bridge) HandleState(_ context.Context, s entity.State) error {
	payload, err := json.Marshal(NumberStatePayload{
		Value:     s.Value,
		Unit:      s.Unit,
		Min:       s.Min,
		Max:       s.Max,
		Step:      s.Step,
		UpdatedAt: s.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding number state: %w", err)
	}
	return b.pub.PublishRetained(Topics{}.NumberState(s.EntryID, s.Key), payload)
}

// PublishCoverState publishes coordinator data as retained cover state.
// It has the coordinator.Listener signature; failures are logged.
func (b *Bridge) PublishCoverState(d coordinator.Data) {
	payload, err := json.Marshal(d)
	if err != nil {
		b.logger.Error("encoding cover state", "entry_id", d.EntryID, "error", err)
		return
	}
	if err := b.pub.PublishRetained(Topics{}.CoverState(d.EntryID), payload); err != nil {
		b.logger.Warn("publishing cover state", "entry_id", d.EntryID, "error", err)
	}
}

// SubscribeCommands routes every number set topic to setter.
func (b *Bridge) SubscribeCommands(sub Subscriber, qos byte, setter ValueSetter) error {
	return sub.Subscribe(Topics{}.AllNumberSets(), qos, b.CommandHandler(setter))
}

// CommandHandler returns the MessageHandler for number set topics.
func (b *Bridge) CommandHandler(setter ValueSetter) MessageHandler {
	return func(topic string, payload []byte) error {
		entryID, key, err := ParseNumberSet(topic)
		if err != nil {
			return err
		}
		value, err := ParseValue(payload)
		if err != nil {
			return err
		}
		state, err := setter.FindByKey(entryID, key)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		ctx = audit.WithActor(ctx, audit.Actor{Source: audit.SourceMQTT, Subject: topic})

		if err := setter.SetValue(ctx, state.UniqueID, value); err != nil {
			return fmt.Errorf("setting %s from mqtt: %w", state.UniqueID, err)
		}
		b.logger.Info("value set from mqtt", "unique_id", state.UniqueID, "value", value)
		return nil
	}
}
