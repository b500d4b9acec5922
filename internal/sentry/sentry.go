// Package sentry is the tool's only network path: crash reports sent when
// SENTRY_DSN is set. Analysis itself never leaves the machine.
package sentry

import (
	"os"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	flushTimeout   = 2 * time.Second
	maxBreadcrumbs = 20
)

// homePathPattern matches the user segment of a home directory, which shows
// up in workflow paths.
var homePathPattern = regexp.MustCompile(`(?i)(/home/|/Users/|C:\\Users\\)([^/\\:]+)`)

var enabled bool

// Init configures crash reporting from SENTRY_DSN. Without a DSN, or with
// DO_NOT_TRACK=1 or WORKFLOW_DOCTOR_NO_TELEMETRY=1, every call in this
// package is a no-op. The returned cleanup flushes pending events.
func Init(version string) func() {
	if optedOut() {
		return func() {}
	}
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return func() {}
	}

	env := os.Getenv("SENTRY_ENVIRONMENT")
	if env == "" {
		env = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          "workflow-doctor@" + version,
		Environment:      env,
		ServerName:       runtime.GOOS + "-" + runtime.GOARCH,
		AttachStacktrace: true,
		MaxBreadcrumbs:   maxBreadcrumbs,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			scrubEvent(event)
			return event
		},
		BeforeBreadcrumb: func(b *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			b.Message = scrubPath(b.Message)
			return b
		},
	})
	if err != nil {
		return func() {}
	}
	enabled = true

	return func() {
		sentry.Flush(flushTimeout)
	}
}

func optedOut() bool {
	return os.Getenv("DO_NOT_TRACK") == "1" || os.Getenv("WORKFLOW_DOCTOR_NO_TELEMETRY") == "1"
}

// CaptureError reports err if reporting is enabled.
func CaptureError(err error) {
	if err == nil || !enabled {
		return
	}
	sentry.CaptureException(err)
}

// AddBreadcrumb records analysis progress attached to later events.
func AddBreadcrumb(category, message string) {
	if !enabled {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	})
}

// SetRunTags tags later events with the output format and worker count.
func SetRunTags(format string, parallel int) {
	if !enabled {
		return
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("output", format)
		scope.SetTag("parallel", strconv.Itoa(parallel))
	})
}

// RecoverAndPanic reports a panic and re-panics. Defer it at entry points.
func RecoverAndPanic() {
	if r := recover(); r != nil {
		if enabled {
			sentry.CurrentHub().Recover(r)
			sentry.Flush(flushTimeout)
		}
		panic(r)
	}
}

func scrubEvent(event *sentry.Event) {
	if event == nil {
		return
	}
	event.Message = scrubPath(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = scrubPath(event.Exception[i].Value)
	}
	for _, b := range event.Breadcrumbs {
		if b != nil {
			b.Message = scrubPath(b.Message)
		}
	}
}

// scrubPath replaces the user name in home directory paths.
func scrubPath(s string) string {
	return homePathPattern.ReplaceAllString(s, "${1}[user]")
}
