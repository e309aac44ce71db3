package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, in Settings) Settings {
	t.Helper()

	v, err := in.Value()
	require.NoError(t, err)

	var out Settings
	require.NoError(t, out.Scan(v))
	return out
}

func TestSettings_RoundTrip(t *testing.T) {
	in := Settings{
		"quality": "high",
		"labels":  []any{"gaming", "fps"},
		"volume":  0.8,
	}

	out := roundTrip(t, in)
	assert.Equal(t, in, out)
}

func TestSettings_RoundTripEmpty(t *testing.T) {
	out := roundTrip(t, Settings{})
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSettings_NilValueIsEmptyObject(t *testing.T) {
	var s Settings
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestSettings_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Settings
	}{
		{name: "nil", src: nil, want: Settings{}},
		{name: "empty string", src: "", want: Settings{}},
		{name: "string", src: `{"a":1}`, want: Settings{"a": float64(1)}},
		{name: "bytes", src: []byte(`{"b":"x"}`), want: Settings{"b": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Settings
			require.NoError(t, s.Scan(tt.src))
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestSettings_ScanRejectsUnsupportedType(t *testing.T) {
	var s Settings
	require.Error(t, s.Scan(42))
}

func TestClipUploaded_MarshalJSON(t *testing.T) {
	event := NewClipUploaded("abc123def456", "alice", "clips/alice/abc123def456.mp4")

	b, err := event.MarshalJSON()
	require.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, `"clip_id":"abc123def456"`)
	assert.Contains(t, s, `"owner":"alice"`)
	assert.Contains(t, s, `"storage_key":"clips/alice/abc123def456.mp4"`)
	assert.Contains(t, s, event.EventID().String())
	assert.Equal(t, "ClipUploaded", event.EventType())
	assert.Equal(t, "abc123def456", event.AggregateID())
}
