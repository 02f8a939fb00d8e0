package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageHelpers(t *testing.T) {
	tests := []struct {
		name   string
		render func(string) string
		prefix string
	}{
		{"success", Success, "✓"},
		{"warn", Warn, "⚠"},
		{"err", Err, "✗"},
		{"info", Info, "ℹ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render("hello")
			assert.Contains(t, out, tt.prefix)
			assert.Contains(t, out, "hello")
		})
	}
}

func TestPlainHelpersKeepText(t *testing.T) {
	assert.Contains(t, Addr("0xABCDEF"), "0xABCDEF")
	assert.Contains(t, Val("12"), "12")
	assert.Contains(t, Meta("meta"), "meta")
	assert.Contains(t, Link("https://x.io"), "https://x.io")
}

func TestBanner(t *testing.T) {
	out := Banner("The Magi Collection", "Discover your Magi Title today!")
	assert.Contains(t, out, "The Magi Collection")
	assert.Contains(t, out, "Discover your Magi Title today!")
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
	assert.Equal(t, "0x1234…5678", TruncateAddr("0x1234567890abcdef1234567890abcdef12345678"))
}

func TestPadR(t *testing.T) {
	assert.Equal(t, "ab   ", padR("ab", 5))
	assert.Equal(t, "abcdef", padR("abcdef", 3))
	assert.Equal(t, "", padR("", 0))
}

func TestConfirmFrom(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := ConfirmFrom(strings.NewReader(tt.in), &out, "Connect?")
		assert.Equal(t, tt.want, got, "%q", tt.in)
		assert.Contains(t, out.String(), "Connect? [y/N]")
	}
}
