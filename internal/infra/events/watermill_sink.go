package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"persona-chat/internal/domain/ports/adapter"
)

// TopicChatEvents carries every adapter.ChatEvent as JSON.
const TopicChatEvents = "chat.events"

var _ adapter.EventSink = (*WatermillSink)(nil)

// WatermillSink publishes chat events to a watermill Publisher.
type WatermillSink struct {
	publisher message.Publisher
	topic     string
	log       *zerolog.Logger
}

func NewWatermillSink(publisher message.Publisher, topic string, log *zerolog.Logger) *WatermillSink {
	if topic == "" {
		topic = TopicChatEvents
	}
	if log == nil {
		l := zerolog.Nop()
		log = &l
	}
	return &WatermillSink{publisher: publisher, topic: topic, log: log}
}

func (w *WatermillSink) Publish(ctx context.Context, ev adapter.ChatEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to marshal chat event")
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(ev.Type))

	if err := w.publisher.Publish(w.topic, msg); err != nil {
		w.log.Error().Err(err).Str("topic", w.topic).Msg("failed to publish chat event")
		return err
	}
	w.log.Trace().Str("topic", w.topic).Str("event_type", string(ev.Type)).Msg("published chat event")
	return nil
}

// NewBus returns an in-process pub/sub. With blocking set, Publish waits
// until subscribers ack.
func NewBus(blocking bool) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: blocking,
	}, watermill.NopLogger{})
}

// LogEvents consumes topic and logs each event until ctx ends or the
// subscription closes.
func LogEvents(ctx context.Context, sub message.Subscriber, topic string, log *zerolog.Logger) error {
	msgs, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range msgs {
			var ev adapter.ChatEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				log.Warn().Err(err).Str("msg_id", msg.UUID).Msg("undecodable chat event")
				msg.Ack()
				continue
			}
			log.Debug().
				Str("event_type", string(ev.Type)).
				Str("session_id", ev.SessionID).
				Str("persona", ev.Persona).
				Str("detail", ev.Detail).
				Msg("chat event")
			msg.Ack()
		}
	}()
	return nil
}
