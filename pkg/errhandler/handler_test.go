package errhandler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/meridianlabs/backoffice/pkg/apperrors"
)

type captureNotifier struct {
	successes []string
	errors    []string
	criticals []*apperrors.AppError
	panics    bool
}

func (n *captureNotifier) Success(message string) { n.successes = append(n.successes, message) }

func (n *captureNotifier) Error(userMessage string, _ *apperrors.AppError) {
	if n.panics {
		panic("notifier down")
	}
	n.errors = append(n.errors, userMessage)
}

func (n *captureNotifier) Critical(err *apperrors.AppError) {
	if n.panics {
		panic("notifier down")
	}
	n.criticals = append(n.criticals, err)
}

func newObservedHandler(cfg Config, notifier Notifier) (*Handler, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core), cfg, notifier), logs
}

func TestHandle_ReturnsTypedUnchanged(t *testing.T) {
	h, _ := newObservedHandler(Config{}, nil)
	in := apperrors.NewNotFound("missing")
	out := h.Handle(in, nil)
	assert.Same(t, in, out)
}

func TestHandle_LogsWithConfiguredLevel(t *testing.T) {
	h, logs := newObservedHandler(Config{Logging: true, LogLevel: zapcore.WarnLevel}, nil)
	h.Handle(errors.New("boom"), map[string]any{"operation": "test"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, apperrors.CodeUnknown, fields["code"])
	assert.Equal(t, map[string]any{"operation": "test"}, fields["context"])
}

func TestHandle_LoggingDisabled(t *testing.T) {
	h, logs := newObservedHandler(Config{Logging: false}, nil)
	h.Handle(errors.New("boom"), nil)
	assert.Zero(t, logs.Len())
}

func TestHandle_CriticalNotification(t *testing.T) {
	notifier := &captureNotifier{}
	h, _ := newObservedHandler(Config{Notify: true}, notifier)

	// Operational 4xx: no critical notification.
	h.Handle(apperrors.NewNotFound("missing"), nil)
	assert.Empty(t, notifier.criticals)

	// Non-operational: critical.
	h.Handle(apperrors.NewInternal("db down", nil), nil)
	require.Len(t, notifier.criticals, 1)
	assert.Equal(t, apperrors.CodeInternal, notifier.criticals[0].Code)
}

func TestHandle_NotifierPanicIsSwallowed(t *testing.T) {
	notifier := &captureNotifier{panics: true}
	h, _ := newObservedHandler(Config{Notify: true}, notifier)

	var typed *apperrors.AppError
	assert.NotPanics(t, func() {
		typed = h.Handle(apperrors.NewInternal("db down", nil), nil)
	})
	assert.Equal(t, apperrors.CodeInternal, typed.Code)
}

func TestSurface_NotifiesUserMessage(t *testing.T) {
	notifier := &captureNotifier{}
	h, _ := newObservedHandler(Config{Logging: true, LogLevel: zapcore.ErrorLevel, Notify: true}, notifier)

	typed := h.Surface(apperrors.NewConflict("version mismatch"), nil)
	assert.Equal(t, apperrors.CodeConflict, typed.Code)
	require.Len(t, notifier.errors, 1)
	assert.Equal(t, apperrors.UserMessage(typed), notifier.errors[0])
}

func TestNew_NilNotifierDefaultsToNop(t *testing.T) {
	h := New(zap.NewNop(), Config{Notify: true}, nil)
	assert.NotPanics(t, func() {
		h.Surface(apperrors.NewInternal("boom", nil), nil)
	})
	assert.NotNil(t, h.Notifier())
}
