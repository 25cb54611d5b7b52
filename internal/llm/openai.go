// Package llm provides chat completion access to LLM APIs.
// This file contains the unified OpenAI-compatible ChatModel. It works
// with any OpenAI-compatible provider (Groq, Cerebras, custom endpoint)
// via a custom BaseURL.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

type openaiChatModel struct {
	client   openai.Client
	model    string
	provider Provider
	retry    RetryConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// newOpenAIChatModel creates an OpenAI-compatible chat model.
// endpoint overrides the predefined provider base URL and is required
// for ProviderOpenAI.
func newOpenAIChatModel(provider Provider, apiKey, model, endpoint string, retry RetryConfig, log *logger.Logger, m *metrics.Metrics) (*openaiChatModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required for provider %s", provider)
	}

	baseURL := endpoint
	if baseURL == "" {
		var ok bool
		baseURL, ok = ProviderEndpoint[provider]
		if !ok {
			return nil, fmt.Errorf("no endpoint configured for provider %s", provider)
		}
	}

	if model == "" {
		model = DefaultModels[provider]
		if model == "" {
			return nil, fmt.Errorf("model is required for provider %s", provider)
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openaiChatModel{
		client:   client,
		model:    model,
		provider: provider,
		retry:    retry,
		logger:   log.WithModule("llm").WithField("provider", provider.String()),
		metrics:  m,
	}, nil
}

// Chat sends the conversation and returns the model's next turn,
// retrying transient failures with backoff.
func (c *openaiChatModel) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: buildOpenAIMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		params.Tools = buildOpenAITools(req.Tools)
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	var resp *openai.ChatCompletion
	start := time.Now()
	err := WithRetry(ctx, c.retry, func(attempt int, err error) {
		c.logger.WithError(err).WithField("attempt", attempt).Warn("retrying chat completion")
	}, func() error {
		var callErr error
		resp, callErr = c.client.Chat.Completions.New(ctx, params)
		return callErr
	})
	duration := time.Since(start)
	c.metrics.RecordLLMCall(c.provider.String(), callStatus(err), duration)

	if err != nil {
		c.logger.WithError(err).WithFields(map[string]any{
			"model":       c.model,
			"duration_ms": duration.Milliseconds(),
		}).Warn("chat completion failed")
		return nil, WrapQuota(fmt.Errorf("chat completion failed: %w", err), c.provider)
	}

	result, err := parseOpenAIResponse(resp)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]any{
		"model":         c.model,
		"input_tokens":  result.InputTokens,
		"output_tokens": result.OutputTokens,
		"tool_calls":    len(result.ToolCalls),
		"duration_ms":   duration.Milliseconds(),
	}).Debug("chat completion finished")

	return result, nil
}

// buildOpenAIMessages converts conversation messages to the request
// union format, reconstructing assistant tool calls and tool results so
// multi-turn tool exchanges replay correctly.
func buildOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}

// buildOpenAITools converts tool definitions to the v3 tool format.
// JSON Schema types are lowercase per Draft 2020-12.
func buildOpenAITools(defs []ToolDef) []openai.ChatCompletionToolUnionParam {
	result := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		properties := make(map[string]any, len(def.Params))
		required := make([]string, 0, len(def.Params))
		for _, p := range def.Params {
			properties[p.Name] = map[string]string{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}

		result = append(result, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		}))
	}
	return result
}

func parseOpenAIResponse(resp *openai.ChatCompletion) (*ChatResult, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	choice := resp.Choices[0]
	result := &ChatResult{
		Content:      choice.Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	for _, tc := range choice.Message.ToolCalls {
		if tc.Type != "function" {
			continue
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return result, nil
}

func callStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Provider returns the provider type for this model.
func (c *openaiChatModel) Provider() Provider {
	return c.provider
}

// Close releases resources held by the model. The openai-go client does
// not require cleanup.
func (c *openaiChatModel) Close() error {
	return nil
}
