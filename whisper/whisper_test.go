package whisper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	c, err := NewClient("sk-test")
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestIsRetryableAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &openai.APIError{HTTPStatusCode: 429}, true},
		{"server error", &openai.APIError{HTTPStatusCode: 500}, true},
		{"bad gateway wrapped", fmt.Errorf("call: %w", &openai.APIError{HTTPStatusCode: 502}), true},
		{"bad request", &openai.APIError{HTTPStatusCode: 400}, false},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401}, false},
		{"context canceled", context.Canceled, false},
		{"generic network", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableAPIError(tt.err))
		})
	}
}
