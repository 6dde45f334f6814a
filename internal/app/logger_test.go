package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("json", &buf).Info("Itinerary planned", "destination", "Lisbon")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Lisbon", line["destination"])

	buf.Reset()
	NewLogger("text", &buf).Debug("Padding days")
	assert.Contains(t, buf.String(), "Padding days")
}
