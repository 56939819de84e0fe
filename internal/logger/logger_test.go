package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter_Format(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "invalid sentiment",
		Data:    logrus.Fields{"value": "very positive", "article_id": 3},
	}

	out, err := (&CustomFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2026-01-17 10:00:00] [WARN] [] invalid sentiment article_id=3 value=very positive\n", string(out))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
}

func TestInitLogger_WritesFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "logs", "run.log")
	require.NoError(t, InitLogger("info", path))

	Log.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "[INFO]")
}
