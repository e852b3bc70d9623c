package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Threshold(t *testing.T) {
	emit := map[Level]func(Logger, string){
		LevelDebug: func(l Logger, m string) { l.Debug(m) },
		LevelInfo:  func(l Logger, m string) { l.Info(m) },
		LevelWarn:  func(l Logger, m string) { l.Warn(m) },
		LevelError: func(l Logger, m string) { l.Error(m) },
	}

	for _, threshold := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelSilent} {
		for msgLevel, log := range emit {
			t.Run(threshold.String()+"/"+msgLevel.String(), func(t *testing.T) {
				var buf bytes.Buffer
				log(NewLogger(threshold, &buf), "scanning node_modules")

				if msgLevel >= threshold {
					assert.Contains(t, buf.String(), "["+msgLevel.String()+"] scanning node_modules")
				} else {
					assert.Empty(t, buf.String())
				}
			})
		}
	}
}

func TestLogger_AnalyzerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LevelWarn, &buf)

	log.Warn("analyzer failed; returning empty result",
		Analyzer("aws-sdk"),
		Err(errors.New("unexpected end of JSON input")),
	)

	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "| analyzer=aws-sdk")
	assert.Contains(t, out, `error="unexpected end of JSON input"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestLogger_WithFieldsSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(LevelError, &buf)
	child := base.WithFields(F("target", "/srv/fn"))

	child.Info("dispatching")
	require.Zero(t, buf.Len(), "info is below the error threshold")

	base.SetLevel(LevelDebug)
	child.Info("dispatching", F("analyzers", 5))

	assert.Contains(t, buf.String(), "target=/srv/fn analyzers=5")
}

func TestLogger_NilOutputUsesStderr(t *testing.T) {
	l, ok := NewLogger(LevelInfo, nil).(*standardLogger)
	require.True(t, ok)
	assert.NotNil(t, l.shared.out)
}

func TestNewSilentLogger(t *testing.T) {
	log := NewSilentLogger()
	log.SetLevel(LevelSilent)
	log.Error("never shown")

	l := log.(*standardLogger)
	assert.Equal(t, LevelSilent, l.shared.level)
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LevelDebug, &buf)

	var wg sync.WaitGroup
	for _, name := range []string{"bundle-size", "heavy-dependencies", "import-analysis", "aws-sdk", "bundler-detection"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.WithFields(Analyzer(name)).Debug("analyzer finished")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 5)
	for _, line := range lines {
		assert.Contains(t, line, "analyzer finished | analyzer=")
	}
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	SetDefault(NewLogger(LevelInfo, &buf))
	Info("loaded config", F("file", ".lambda-doctor.yml"))
	Debug("hidden")

	assert.Contains(t, buf.String(), "loaded config | file=.lambda-doctor.yml")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"off", LevelSilent, false},
		{"loud", LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_String(t *testing.T) {
	for level, want := range map[Level]string{
		LevelDebug:  "DEBUG",
		LevelWarn:   "WARN",
		LevelSilent: "SILENT",
		Level(42):   "UNKNOWN",
	} {
		assert.Equal(t, want, level.String())
	}
}
