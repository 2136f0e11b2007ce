package logging

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLevel()
	SetOutput(&buf, 0, false)
	t.Cleanup(func() {
		SetOutput(os.Stderr, log.LstdFlags, false)
		SetLevel(prev)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		" Error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestComponentLogger(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(LevelInfo)

	l := Component("pool")
	l.Debugf("hidden %d", 1)
	l.Infof("meshed %d chunks", 4)
	l.Errorf("failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO  [pool] meshed 4 chunks\n")
	assert.Contains(t, out, "ERROR [pool] failed\n")
}

func TestLevelThreshold(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(LevelWarn)

	l := Component("")
	l.Infof("quiet")
	l.Warnf("loud")
	assert.Equal(t, "WARN  loud\n", buf.String())
}
