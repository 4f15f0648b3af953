package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry initializes Sentry error reporting when a DSN is configured.
// Returns a flush function to call before process exit; with an empty DSN
// both initialization and flushing are no-ops.
func InitSentry(dsn, runID string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return func() {}, err
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", runID)
	})

	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureError reports an error to Sentry. Safe to call when Sentry was
// never initialized.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
