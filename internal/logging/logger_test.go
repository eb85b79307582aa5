package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/fitcoach/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("whatever"))
	assert.Equal(t, logrus.WarnLevel, GetLevel(" warning "))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("Error"))
}

func TestNewOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, newOutput(LoggerSetupParams{}))
	assert.Equal(t, os.Stdout, newOutput(LoggerSetupParams{LogToStdout: true}))

	dir := t.TempDir()
	out := newOutput(LoggerSetupParams{LogFileName: filepath.Join(dir, "service"), MaxBackups: 3})
	file, ok := out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "service.log"), file.Filename)
	assert.Equal(t, 3, file.MaxBackups)
	assert.Equal(t, maxLogFileSizeMB, file.MaxSize)

	out = newOutput(LoggerSetupParams{LogFileName: filepath.Join(dir, "service.log"), LogToStdout: true})
	both, ok := out.(*pkg.MultiWriter)
	require.True(t, ok)
	assert.Equal(t, 2, both.Len())
}

func TestNewFormatter(t *testing.T) {
	_, isJSON := newFormatter(true).(*logrus.JSONFormatter)
	assert.True(t, isJSON)
	text, isText := newFormatter(false).(*logrus.TextFormatter)
	require.True(t, isText)
	assert.True(t, text.FullTimestamp)
}

func TestEventFromEntry(t *testing.T) {
	logger := logrus.New()
	entry := logrus.NewEntry(logger).
		WithField("client", "c1").
		WithError(errors.New("boom"))
	entry.Level = logrus.ErrorLevel
	entry.Message = "upsert failed"

	event := eventFromEntry(entry)
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "upsert failed", event.Message)
	assert.Equal(t, "c1", event.Extra["client"])
	_, hasErrKey := event.Extra[logrus.ErrorKey]
	assert.False(t, hasErrKey)
	require.Len(t, event.Exception, 1)
	assert.Equal(t, "boom", event.Exception[0].Value)
	assert.Equal(t, "*errors.errorString", event.Exception[0].Type)
}

func TestSentryHook_FireWithoutClientIsNoop(t *testing.T) {
	hook := NewSentryHook(sentry.NewHub(nil, sentry.NewScope()), []logrus.Level{logrus.ErrorLevel})
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())
	assert.NoError(t, hook.Fire(logrus.NewEntry(logrus.New())))
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.PanicLevel))
	assert.Equal(t, sentry.LevelWarning, sentryLevel(logrus.WarnLevel))
	assert.Equal(t, sentry.LevelDebug, sentryLevel(logrus.TraceLevel))
}
