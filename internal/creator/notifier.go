package creator

import (
	"sync"

	"go.uber.org/zap"

	"token-forge/internal/apperr"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-facing progress message: a short title and a longer description.
type Notification struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notifier receives notifications as a run progresses. Rendering is up to the caller.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications returns a copy of the recorded notifications in order.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// LogNotifier writes notifications to a zap logger.
func LogNotifier(l *zap.Logger) Notifier {
	return NotifierFunc(func(n Notification) {
		fields := []zap.Field{zap.String("title", n.Title), zap.String("description", n.Description)}
		switch n.Level {
		case LevelError:
			l.Error("notification", fields...)
		case LevelWarning:
			l.Warn("notification", fields...)
		default:
			l.Info("notification", fields...)
		}
	})
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(n Notification) {
	for _, x := range m {
		x.Notify(n)
	}
}

// Tee fans every notification out to all ns.
func Tee(ns ...Notifier) Notifier {
	return multiNotifier(ns)
}

// failureNotification maps a run failure to its notification text.
func failureNotification(e *apperr.Error) Notification {
	n := Notification{Level: LevelError, Title: e.Title(), Description: e.Message}
	switch e.Kind {
	case apperr.KindTimeout:
		n.Title = "Transaction timed out"
		n.Description = "Please try again and confirm in your wallet promptly"
	case apperr.KindSigningRejected:
		n.Description = "You rejected the transaction in your wallet"
	case apperr.KindWalletDisconnected:
		n.Description = "Your wallet was disconnected. Please reconnect and try again."
	case apperr.KindTransaction, apperr.KindInternal:
		n.Title = "Failed to create coin"
	}
	return n
}
