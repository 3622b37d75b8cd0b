package errhandler

import (
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
)

// Notifier is the surface notifications land on: transient user toasts on the
// client, paging/alerting records on the server. Implementations must not
// block the caller.
type Notifier interface {
	// Success announces a completed operation with a caller-supplied message.
	Success(message string)
	// Error shows a transient, user-facing failure notification.
	Error(userMessage string, err *apperrors.AppError)
	// Critical records an unexpected defect or 5xx-class failure that
	// warrants alerting, as opposed to an expected domain failure.
	Critical(err *apperrors.AppError)
}

// LogNotifier emits notifications as structured log records. It is the
// default sink when no UI or alerting integration is wired in.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Success(message string) {
	n.Logger.Info("notification", zap.String("level", "success"), zap.String("message", message))
}

func (n LogNotifier) Error(userMessage string, err *apperrors.AppError) {
	n.Logger.Warn("notification",
		zap.String("level", "error"),
		zap.String("message", userMessage),
		zap.String("code", err.Code),
	)
}

func (n LogNotifier) Critical(err *apperrors.AppError) {
	n.Logger.Error("critical_error",
		zap.String("code", err.Code),
		zap.Int("status", err.Status),
		zap.String("message", err.Message),
		zap.Bool("operational", err.Operational),
	)
}

// NopNotifier drops all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string)                    {}
func (NopNotifier) Error(string, *apperrors.AppError) {}
func (NopNotifier) Critical(*apperrors.AppError)      {}
