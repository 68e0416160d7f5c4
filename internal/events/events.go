package events

import (
	"encoding/json"

	"api/internal/messaging"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Event types carried on the notifications topic.
const (
	TypeUserWelcome              = "user_welcome"
	TypeMFAEnabled               = "mfa_enabled"
	TypeMFADisabled              = "mfa_disabled"
	TypeRecoveryCodesRegenerated = "recovery_codes_regenerated"
)

// Payload is the wire shape of a notification event. Events never carry
// secrets; the notification templates work from account metadata only.
type Payload struct {
	Type     string `json:"type"`
	Email    string `json:"email"`
	Username string `json:"username"`
	WebURL   string `json:"web_url"`
}

// Event pairs a payload with the publisher it should go out on. Trigger is
// fire-and-forget: a publish failure is logged, never surfaced to the
// request that produced the event.
type Event struct {
	publisher messaging.IPublisher
	payload   Payload
}

func newEvent(publisher messaging.IPublisher, payload Payload) Event {
	return Event{publisher: publisher, payload: payload}
}

// NewUserWelcome fires after a successful signup.
func NewUserWelcome(publisher messaging.IPublisher, email, username, webURL string) Event {
	return newEvent(publisher, Payload{
		Type:     TypeUserWelcome,
		Email:    email,
		Username: username,
		WebURL:   webURL,
	})
}

// NewMFAEnabled fires when two-factor authentication is turned on.
func NewMFAEnabled(publisher messaging.IPublisher, email, username, webURL string) Event {
	return newEvent(publisher, Payload{
		Type:     TypeMFAEnabled,
		Email:    email,
		Username: username,
		WebURL:   webURL,
	})
}

// NewMFADisabled fires when two-factor authentication is turned off.
func NewMFADisabled(publisher messaging.IPublisher, email, username, webURL string) Event {
	return newEvent(publisher, Payload{
		Type:     TypeMFADisabled,
		Email:    email,
		Username: username,
		WebURL:   webURL,
	})
}

// NewRecoveryCodesRegenerated fires when a fresh set of backup codes
// replaces the previous one.
func NewRecoveryCodesRegenerated(publisher messaging.IPublisher, email, username, webURL string) Event {
	return newEvent(publisher, Payload{
		Type:     TypeRecoveryCodesRegenerated,
		Email:    email,
		Username: username,
		WebURL:   webURL,
	})
}

func (e Event) Trigger() {
	body, err := json.Marshal(e.payload)
	if err != nil {
		zap.L().Error("Failed to marshal event", zap.String("type", e.payload.Type), zap.Error(err))
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	if err = e.publisher.Publish(msg); err != nil {
		zap.L().Error("Failed to publish event", zap.String("type", e.payload.Type), zap.Error(err))
	}
}
