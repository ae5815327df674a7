package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiChatAPI is the subset of the genai SDK we call: model construction
// and one chat turn against a configured model.
type GeminiChatAPI interface {
	GenerativeModel(name string) *genai.GenerativeModel
	SendMessage(ctx context.Context, model *genai.GenerativeModel, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	Close() error
}

type sdkGemini struct {
	client *genai.Client
}

func (s sdkGemini) GenerativeModel(name string) *genai.GenerativeModel {
	return s.client.GenerativeModel(name)
}

func (s sdkGemini) SendMessage(ctx context.Context, model *genai.GenerativeModel, history []*genai.Content, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	cs := model.StartChat()
	cs.History = history
	return cs.SendMessage(ctx, parts...)
}

func (s sdkGemini) Close() error {
	return s.client.Close()
}

// GeminiClient implements Client using Google's Gemini API.
type GeminiClient struct {
	api     GeminiChatAPI
	modelID string
}

// NewGeminiClient creates a Gemini client authenticated with an API key.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to create gemini client: %w", err)
	}

	return NewGeminiClientWithAPI(sdkGemini{client: client}, modelID), nil
}

// NewGeminiClientWithAPI builds a client over an existing chat API.
func NewGeminiClientWithAPI(api GeminiChatAPI, modelID string) *GeminiClient {
	if api == nil {
		panic("llm: gemini chat api cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}
	return &GeminiClient{api: api, modelID: modelID}
}

// Complete sends the conversation to Gemini and returns the joined text parts.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	modelID := c.modelID
	if strings.TrimSpace(req.Model) != "" {
		modelID = req.Model
	}
	if len(req.Messages) == 0 {
		return Response{}, errors.New("llm: gemini requires at least one message")
	}
	model := c.api.GenerativeModel(modelID)

	if req.Temperature >= 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	model.ResponseMIMEType = "application/json"

	if systemText := strings.TrimSpace(strings.Join(req.System, "\n\n")); systemText != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemText))
	}

	var history []*genai.Content
	for _, msg := range req.Messages[:len(req.Messages)-1] {
		content := strings.TrimSpace(msg.Content)
		if content == "" || msg.Role == RoleSystem {
			continue
		}
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}

	last := req.Messages[len(req.Messages)-1]
	resp, err := c.api.SendMessage(ctx, model, history, genai.Text(last.Content))
	if err != nil {
		return Response{}, fmt.Errorf("llm: gemini completion failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return Response{}, errors.New("llm: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return Response{}, errors.New("llm: gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	out := Response{
		Text:       strings.TrimSpace(text.String()),
		StopReason: candidate.FinishReason.String(),
	}
	if resp.UsageMetadata != nil {
		out.Usage = TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		}
	}
	return out, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	return c.api.Close()
}

var _ Client = (*GeminiClient)(nil)
