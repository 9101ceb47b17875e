package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("booking", &buf)

	l.Infow("booking created", map[string]any{"booking_id": 7})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "booking", entry["component"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "booking created", entry["message"])
	assert.EqualValues(t, 7, entry["booking_id"])
}

func TestSetup(t *testing.T) {
	assert.NoError(t, Setup("debug", "console"))
	assert.Error(t, Setup("loud", "json"))
	require.NoError(t, Setup("info", "json"))

	l := New("test")
	l.Debugf("debug %d", 1)
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}
