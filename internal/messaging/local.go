package messaging

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// Channel is an in-process event bus backed by a watermill go-channel. The
// auth services publish onto it and the notifications worker in the same
// process consumes from it, so no external broker is involved. Publishers
// and subscribers minted from the same Channel share delivery.
type Channel struct {
	bus *gochannel.GoChannel
}

func NewChannel() *Channel {
	return &Channel{
		bus: gochannel.NewGoChannel(gochannel.Config{
			Persistent: true,
		}, watermill.NopLogger{}),
	}
}

// Publisher returns a publisher bound to the given topic.
func (c *Channel) Publisher(topic string) IPublisher {
	return &topicPublisher{topic: topic, bus: c.bus}
}

// Subscriber returns a subscriber bound to the given topic.
func (c *Channel) Subscriber(topic string) ISubscriber {
	return &topicSubscriber{topic: topic, bus: c.bus}
}

// Close shuts the underlying bus down. Subscriber channels are closed and
// further publishes fail.
func (c *Channel) Close() error {
	return c.bus.Close()
}

type topicPublisher struct {
	topic string
	bus   *gochannel.GoChannel
}

func (p *topicPublisher) Publish(messages ...*message.Message) error {
	return p.bus.Publish(p.topic, messages...)
}

func (p *topicPublisher) Close() error {
	return p.bus.Close()
}

type topicSubscriber struct {
	topic string
	bus   *gochannel.GoChannel
}

func (s *topicSubscriber) Subscribe() <-chan *message.Message {
	sub, err := s.bus.Subscribe(context.Background(), s.topic)
	if err != nil {
		zap.L().Error("Failed to subscribe to topic", zap.String("topic", s.topic), zap.Error(err))
		return nil
	}
	return sub
}

func (s *topicSubscriber) Close() error {
	return s.bus.Close()
}
