// Package llm provides chat completion access to LLM APIs.
// This file contains the provider factory.
package llm

import (
	"context"
	"fmt"

	"github.com/campusbuddy/campusbuddy-go/internal/config"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

// New creates the ChatModel for the configured provider.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (ChatModel, error) {
	provider := Provider(cfg.LLMProvider)
	retry := DefaultRetryConfig()

	switch provider {
	case ProviderGemini:
		apiKey := cfg.GeminiAPIKey
		if apiKey == "" {
			apiKey = cfg.LLMAPIKey
		}
		return newGeminiChatModel(ctx, apiKey, cfg.LLMModel, retry, log, m)

	case ProviderGroq, ProviderCerebras:
		return newOpenAIChatModel(provider, cfg.LLMAPIKey, cfg.LLMModel, "", retry, log, m)

	case ProviderOpenAI:
		if cfg.LLMEndpoint == "" {
			return nil, fmt.Errorf("LLM_ENDPOINT is required for provider %s", provider)
		}
		return newOpenAIChatModel(provider, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMEndpoint, retry, log, m)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
