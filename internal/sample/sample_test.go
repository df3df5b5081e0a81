package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inbox-triage/triage/internal/agent"
)

func TestInbox(t *testing.T) {
	emails, err := Inbox()
	require.NoError(t, err)
	require.Len(t, emails, 5)

	seen := make(map[string]bool)
	for _, email := range emails {
		assert.NotEmpty(t, email.ID)
		assert.False(t, seen[email.ID], "duplicate id %s", email.ID)
		seen[email.ID] = true

		assert.NotEmpty(t, email.SenderEmail)
		assert.NotEmpty(t, email.Subject)
		assert.NotEmpty(t, email.Body)
		assert.False(t, email.ReceivedAt.IsZero())
	}
}

func TestInboxCoversEveryCategory(t *testing.T) {
	emails, err := Inbox()
	require.NoError(t, err)

	categories := make(map[agent.Category]bool)
	for _, email := range emails {
		categories[agent.Classify(email).Category] = true
	}

	assert.True(t, categories[agent.CategoryImportant], "expected an important email")
	assert.True(t, categories[agent.CategoryMarketing], "expected a marketing email")
	assert.True(t, categories[agent.CategoryTransactional], "expected a transactional email")
}

func TestInboxReturnsFreshCopies(t *testing.T) {
	first, err := Inbox()
	require.NoError(t, err)
	second, err := Inbox()
	require.NoError(t, err)

	first[0].Subject = "mutated"
	assert.NotEqual(t, first[0].Subject, second[0].Subject)
}
