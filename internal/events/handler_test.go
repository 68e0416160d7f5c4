package events

import (
	"sync"
	"testing"
	"time"

	"api/internal/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []recordedNotification
}

type recordedNotification struct {
	To           string
	Subject      string
	TemplateName string
}

func (n *recordingNotifier) NotifyFromTemplate(to, subject, templateName string, _ any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, recordedNotification{to, subject, templateName})
	return nil
}

func (n *recordingNotifier) recorded() []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedNotification(nil), n.notifications...)
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestHandleEvents(t *testing.T) {
	newPipeline := func(t *testing.T) (messaging.IPublisher, *recordingNotifier) {
		t.Helper()
		channel := messaging.NewChannel()
		t.Cleanup(func() { _ = channel.Close() })
		publisher := channel.Publisher("notifications")
		subscriber := channel.Subscriber("notifications")

		notify := &recordingNotifier{}
		go HandleEvents(&EventParams{Notifier: notify}, subscriber.Subscribe())
		return publisher, notify
	}

	t.Run("should turn an MFA enabled event into a notification", func(t *testing.T) {
		publisher, notify := newPipeline(t)

		NewMFAEnabled(publisher, "alice@example.com", "alice", "http://localhost:3000").Trigger()

		waitFor(t, func() bool { return len(notify.recorded()) == 1 })

		notification := notify.recorded()[0]
		assert.Equal(t, "alice@example.com", notification.To)
		assert.Equal(t, "Two-factor authentication enabled", notification.Subject)
		assert.Equal(t, TypeMFAEnabled, notification.TemplateName)
	})

	t.Run("should drop unknown event types and keep draining", func(t *testing.T) {
		publisher, notify := newPipeline(t)

		Event{publisher: publisher, payload: Payload{Type: "mystery", Email: "x@example.com"}}.Trigger()
		NewUserWelcome(publisher, "bob@example.com", "bob", "http://localhost:3000").Trigger()

		waitFor(t, func() bool { return len(notify.recorded()) == 1 })

		notification := notify.recorded()[0]
		require.Equal(t, "bob@example.com", notification.To)
		assert.Equal(t, TypeUserWelcome, notification.TemplateName)
	})
}
