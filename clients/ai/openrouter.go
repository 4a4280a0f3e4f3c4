package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouterClient - OpenAI-совместимый chat completions API (OpenRouter) через go-openai
type OpenRouterClient struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenRouterClient создаёт клиент OpenRouter
func NewOpenRouterClient(baseURL, apiKey, model string) *OpenRouterClient {
	if model == "" {
		model = DefaultOpenRouterModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = reasoningOff{next: &http.Client{}}
	return &OpenRouterClient{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (c *OpenRouterClient) Provider() Provider { return ProviderOpenRouter }
func (c *OpenRouterClient) Model() string      { return c.model }

// Chat отправляет запрос; в JSONMode включены response_format=json_object и reasoning.effort=none
func (c *OpenRouterClient) Chat(ctx context.Context, req BackendRequest) (*BackendResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY не задан")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	body := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("ошибка API OpenRouter: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("пустой ответ от API")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &BackendResponse{
		Content:          resp.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Duration:         time.Since(start),
	}, nil
}

// reasoningOff дописывает reasoning.effort=none в JSON-запросы: в ChatCompletionRequest
// нет поля для объекта reasoning OpenRouter
type reasoningOff struct {
	next *http.Client
}

func (d reasoningOff) Do(req *http.Request) (*http.Response, error) {
	if req.Body == nil || req.Method != http.MethodPost {
		return d.next.Do(req)
	}
	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения запроса: %w", err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		if _, jsonMode := body["response_format"]; jsonMode {
			body["reasoning"] = map[string]any{"effort": "none"}
			if patched, err := json.Marshal(body); err == nil {
				raw = patched
			}
		}
	}

	req.Body = io.NopCloser(bytes.NewReader(raw))
	req.ContentLength = int64(len(raw))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(raw)), nil
	}
	return d.next.Do(req)
}
