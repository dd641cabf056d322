package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuroforge/telegram-morph-bot/internal/recon"
)

func TestSearchFailureText(t *testing.T) {
	apiErr := &recon.APIError{Status: 401, Message: "Invalid API key"}
	assert.Equal(t, "Search failed (status 401): Invalid API key", searchFailureText(apiErr))

	assert.Equal(t, searchDownText, searchFailureText(errors.New("dial tcp: timeout")))
}
