package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/expo/metro-core/internal/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "valid: text, json, yaml")
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

type sample struct {
	FileName string `json:"fileName"`
	Count    int    `json:"count"`
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, sample{FileName: "a.js", Count: 2}))
	assert.JSONEq(t, `{"fileName":"a.js","count":2}`, buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, sample{FileName: "a.js", Count: 2}))
	assert.Equal(t, "count: 2\nfileName: a.js\n", buf.String())

	assert.Error(t, Encode(&buf, FormatText, sample{}))
}
