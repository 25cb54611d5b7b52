// Package llm provides chat completion access to LLM APIs.
// This file contains the Gemini ChatModel built on the official SDK.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

type geminiChatModel struct {
	client  *genai.Client
	model   string
	retry   RetryConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// newGeminiChatModel creates a Gemini-backed chat model.
func newGeminiChatModel(ctx context.Context, apiKey, model string, retry RetryConfig, log *logger.Logger, m *metrics.Metrics) (*geminiChatModel, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required for provider gemini")
	}
	if model == "" {
		model = DefaultModels[ProviderGemini]
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiChatModel{
		client:  client,
		model:   model,
		retry:   retry,
		logger:  log.WithModule("llm").WithField("provider", ProviderGemini.String()),
		metrics: m,
	}, nil
}

// Chat sends the conversation and returns the model's next turn.
func (c *geminiChatModel) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	contents, systemInst, err := buildGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if systemInst != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInst, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{{
			FunctionDeclarations: buildGeminiFunctions(req.Tools),
		}}
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	var resp *genai.GenerateContentResponse
	start := time.Now()
	callErr := WithRetry(ctx, c.retry, func(attempt int, err error) {
		c.logger.WithError(err).WithField("attempt", attempt).Warn("retrying generate content")
	}, func() error {
		var err error
		resp, err = c.client.Models.GenerateContent(ctx, c.model, contents, config)
		return err
	})
	duration := time.Since(start)
	c.metrics.RecordLLMCall(ProviderGemini.String(), callStatus(callErr), duration)

	if callErr != nil {
		c.logger.WithError(callErr).WithFields(map[string]any{
			"model":       c.model,
			"duration_ms": duration.Milliseconds(),
		}).Warn("generate content failed")
		return nil, WrapQuota(fmt.Errorf("generate content failed: %w", callErr), ProviderGemini)
	}

	return parseGeminiResponse(resp)
}

// buildGeminiContents converts conversation messages to Gemini contents.
// System messages become the system instruction; tool results become
// function response parts.
func buildGeminiContents(msgs []Message) ([]*genai.Content, string, error) {
	var systemInst string
	contents := make([]*genai.Content, 0, len(msgs))

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			if systemInst != "" {
				systemInst += "\n\n"
			}
			systemInst += m.Content

		case RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))

		case RoleAssistant:
			parts := make([]*genai.Part, 0, 1+len(m.ToolCalls))
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, "", fmt.Errorf("failed to rebuild tool call arguments: %w", err)
					}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{Name: tc.Name, Args: args},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})

		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     m.ToolName,
						Response: map[string]any{"content": m.Content},
					},
				}},
			})
		}
	}

	return contents, systemInst, nil
}

func buildGeminiFunctions(defs []ToolDef) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		properties := make(map[string]*genai.Schema, len(def.Params))
		required := make([]string, 0, len(def.Params))
		for _, p := range def.Params {
			properties[p.Name] = &genai.Schema{
				Type:        geminiType(p.Type),
				Description: p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		result = append(result, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	return result
}

func geminiType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func parseGeminiResponse(resp *genai.GenerateContentResponse) (*ChatResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("empty response from model")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, errors.New("no content in response")
	}

	result := &ChatResult{}
	if resp.UsageMetadata != nil {
		result.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		result.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}

	for i, part := range candidate.Content.Parts {
		if part.Text != "" {
			result.Content += part.Text
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("failed to encode function call arguments: %w", err)
			}
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				// Gemini does not assign call IDs, synthesize stable ones.
				ID:        fmt.Sprintf("call_%d_%s", i, part.FunctionCall.Name),
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}

	return result, nil
}

// Provider returns the provider type for this model.
func (c *geminiChatModel) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the model. The genai client does not
// require cleanup.
func (c *geminiChatModel) Close() error {
	return nil
}
