package events

import (
	"encoding/json"

	"api/internal/notifier"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// EventParams holds the dependencies of the notifications worker.
type EventParams struct {
	Notifier notifier.INotifier
}

var subjects = map[string]string{
	TypeUserWelcome:              "Welcome to SocialHub",
	TypeMFAEnabled:               "Two-factor authentication enabled",
	TypeMFADisabled:              "Two-factor authentication disabled",
	TypeRecoveryCodesRegenerated: "Your backup codes were regenerated",
}

// HandleEvents drains the notifications topic and turns each event into an
// email. Runs until the channel closes; malformed or unknown events are
// acked and dropped so one bad message cannot wedge the topic.
func HandleEvents(params *EventParams, messages <-chan *message.Message) {
	for msg := range messages {
		handleMessage(params, msg)
		msg.Ack()
	}
}

func handleMessage(params *EventParams, msg *message.Message) {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		zap.L().Error("Failed to unmarshal event", zap.String("message_id", msg.UUID), zap.Error(err))
		return
	}

	subject, known := subjects[payload.Type]
	if !known {
		zap.L().Warn("Dropping event of unknown type",
			zap.String("message_id", msg.UUID),
			zap.String("type", payload.Type),
		)
		return
	}

	data := map[string]string{
		"Username": payload.Username,
		"WebURL":   payload.WebURL,
	}

	if err := params.Notifier.NotifyFromTemplate(payload.Email, subject, payload.Type, data); err != nil {
		zap.L().Error("Failed to deliver notification",
			zap.String("type", payload.Type),
			zap.String("to", payload.Email),
			zap.Error(err),
		)
	}
}
