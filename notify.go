package hastic

import "log/slog"

// Level classifies user-visible notifications.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier receives user-visible alerts about the Hastic server. The host
// application typically bridges it onto its notification bus so alerts
// show up as toasts; the default implementation writes to the service
// logger instead.
//
// Notify is called at most once per availability transition of an endpoint
// (see [registry.Store]), never once per failed request.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a plain function to the [Notifier] interface.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// slogNotifier is the default Notifier used when the host application does
// not provide one.
type slogNotifier struct {
	logger *slog.Logger
}

func (n slogNotifier) Notify(level Level, message string) {
	switch level {
	case LevelError:
		n.logger.Error(message)
	case LevelWarning:
		n.logger.Warn(message)
	default:
		n.logger.Info(message)
	}
}
