package trace

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopDiscardsEverything(t *testing.T) {
	assert.NotPanics(t, func() { Nop.Tracef("malloc(%d)", 16) })
}

func TestWriterAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	w := Writer{W: &buf}
	w.Tracef("Malloc(%#x)", 16)
	assert.Equal(t, "Malloc(0x10)\n", buf.String())
}

func TestWriterKeepsExistingNewline(t *testing.T) {
	var buf bytes.Buffer
	w := Writer{W: &buf}
	w.Tracef("Malloc(%#x)\n", 16)
	assert.Equal(t, "Malloc(0x10)\n", buf.String())
}

func TestSlogLoggerLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sl := SlogLogger{L: l}

	sl.Tracef("Free(%#x)", 0x10)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "Free(0x10)")
	assert.True(t, strings.Contains(out, "msg="))
}
