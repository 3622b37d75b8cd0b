package errhandler

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
)

// Config controls what a Handler does beside classification. Plain data, so a
// single logical handler per process can be constructed explicitly instead of
// hiding behind a module-level singleton.
type Config struct {
	Logging  bool
	LogLevel zapcore.Level
	Notify   bool
}

// Handler sits at each boundary (HTTP middleware on the server, UI event
// handlers on the client) and turns a raw failure into a logged, optionally
// notified, typed error.
type Handler struct {
	logger   *zap.Logger
	cfg      Config
	notifier Notifier
}

func New(logger *zap.Logger, cfg Config, notifier Notifier) *Handler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Handler{logger: logger, cfg: cfg, notifier: notifier}
}

// Notifier exposes the configured notification sink so callers (e.g. the
// optimistic mutation coordinator) can emit success notifications through the
// same surface.
func (h *Handler) Notifier() Notifier { return h.notifier }

// Handle classifies err, logs it, emits a critical notification for
// non-operational or 5xx-class failures, and returns the typed error
// unchanged so callers can branch on it. Logging and notification failures
// are swallowed and never replace the error being handled.
func (h *Handler) Handle(err error, ctx map[string]any) *apperrors.AppError {
	typed := apperrors.Classify(err, ctx)

	if h.cfg.Logging {
		h.log(typed)
	}
	if h.cfg.Notify && (!typed.Operational || typed.Status >= 500) {
		h.notifyCritical(typed)
	}
	return typed
}

// Surface is the client-boundary variant of Handle: after the usual
// classification and logging it resolves the error code through the user
// message table and renders a transient notification.
func (h *Handler) Surface(err error, ctx map[string]any) *apperrors.AppError {
	typed := h.Handle(err, ctx)
	func() {
		defer func() { _ = recover() }()
		h.notifier.Error(apperrors.UserMessage(typed), typed)
	}()
	return typed
}

func (h *Handler) log(typed *apperrors.AppError) {
	fields := []zap.Field{
		zap.String("code", typed.Code),
		zap.Int("status", typed.Status),
		zap.String("kind", string(typed.Kind)),
		zap.Bool("operational", typed.Operational),
		zap.Time("timestamp", typed.Timestamp),
	}
	if typed.Context != nil {
		fields = append(fields, zap.Any("context", typed.Context))
	}
	if typed.Cause != nil {
		fields = append(fields, zap.NamedError("cause", typed.Cause))
	}
	if ce := h.logger.Check(h.cfg.LogLevel, typed.Message); ce != nil {
		ce.Write(fields...)
	}
}

func (h *Handler) notifyCritical(typed *apperrors.AppError) {
	// Best effort: a broken notifier must never mask the original error.
	defer func() { _ = recover() }()
	h.notifier.Critical(typed)
}
