package core

import (
	"api/internal/configuration"
	"api/internal/messaging"

	"go.uber.org/zap"
)

// EventsManager owns the in-process event topics. Publisher and subscriber
// for a topic are minted from one shared channel so the notifications worker
// sees every event published in the same process.
type EventsManager struct {
	channels    map[string]*messaging.Channel
	publishers  map[string]messaging.IPublisher
	subscribers map[string]messaging.ISubscriber
}

func NewEventsManager() *EventsManager {
	manager := &EventsManager{
		channels:    make(map[string]*messaging.Channel),
		publishers:  make(map[string]messaging.IPublisher),
		subscribers: make(map[string]messaging.ISubscriber),
	}

	for _, topic := range []string{configuration.EventsNotifications} {
		channel := messaging.NewChannel()
		manager.channels[topic] = channel
		manager.publishers[topic] = channel.Publisher(topic)
		manager.subscribers[topic] = channel.Subscriber(topic)
		zap.L().Info("Initialized event topic", zap.String("topic", topic))
	}

	return manager
}

func (em *EventsManager) GetPublisher(topic string) messaging.IPublisher {
	publisher, exists := em.publishers[topic]
	if !exists {
		zap.L().Warn("Publisher not found", zap.String("topic", topic))
		return nil
	}
	return publisher
}

func (em *EventsManager) GetSubscriber(topic string) messaging.ISubscriber {
	subscriber, exists := em.subscribers[topic]
	if !exists {
		zap.L().Warn("Subscriber not found", zap.String("topic", topic))
		return nil
	}
	return subscriber
}

func (em *EventsManager) Close() {
	for topic, channel := range em.channels {
		if err := channel.Close(); err != nil {
			zap.L().Error("Failed to close event topic", zap.String("topic", topic), zap.Error(err))
		}
	}
}
