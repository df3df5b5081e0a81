package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUnsubscribeLink(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "plain unsubscribe URL",
			body:     "To stop receiving these emails, click here: https://focusfitness.io/unsubscribe",
			expected: "https://focusfitness.io/unsubscribe",
		},
		{
			name:     "optout URL",
			body:     "Manage your subscription at https://example.com/optout?id=42 anytime.",
			expected: "https://example.com/optout?id=42",
		},
		{
			name:     "preferences URL",
			body:     "Update settings: https://modernthreads.com/preferences/unsubscribe\n\nThanks!",
			expected: "https://modernthreads.com/preferences/unsubscribe",
		},
		{
			name:     "case insensitive URL marker",
			body:     "Visit HTTPS://EXAMPLE.COM/UNSUBSCRIBE now",
			expected: "HTTPS://EXAMPLE.COM/UNSUBSCRIBE",
		},
		{
			name:     "anchor tag with unsubscribe text",
			body:     `<p>Bye!</p><a href="https://example.com/u/abc123">Unsubscribe here</a>`,
			expected: "https://example.com/u/abc123",
		},
		{
			name:     "anchor text matched case insensitively",
			body:     `<a href="https://example.com/x9">UNSUBSCRIBE</a>`,
			expected: "https://example.com/x9",
		},
		{
			name:     "anchor without unsubscribe text ignored",
			body:     `<a href="https://example.com/shop">Shop now</a>`,
			expected: "",
		},
		{
			name:     "no link at all",
			body:     "Reply STOP to opt out of further messages.",
			expected: "",
		},
		{
			name:     "empty body",
			body:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractUnsubscribeLink(tt.body))
		})
	}
}

func TestExtractUnsubscribeLinkPrefersPlainURL(t *testing.T) {
	body := `See https://example.com/unsubscribe/plain or <a href="https://example.com/anchor">unsubscribe</a>`
	assert.Equal(t, "https://example.com/unsubscribe/plain", ExtractUnsubscribeLink(body))
}
