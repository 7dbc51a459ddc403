package args

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan(t *testing.T) {
	word := Compile(`[^ ]+`)

	tests := []struct {
		name      string
		input     string
		wantToken string
		wantRest  string
		wantOK    bool
	}{
		{"first of several", "one two three", "one", "two three", true},
		{"whole string", "one", "one", "", true},
		{"single separator only", "one  two", "one", " two", true},
		{"leading space", " one", "", " one", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, rest, ok := Scan(word, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestScanCaseInsensitive(t *testing.T) {
	re := Compile(`yes|no`)

	token, rest, ok := Scan(re, "YES please")
	assert.True(t, ok)
	assert.Equal(t, "YES", token)
	assert.Equal(t, "please", rest)
}

func TestScanAnchored(t *testing.T) {
	token, rest, ok := Scan(Number.Pattern(), "abc 12")
	assert.False(t, ok)
	assert.Empty(t, token)
	assert.Equal(t, "abc 12", rest)
}
