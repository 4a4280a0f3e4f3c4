package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedBackend struct {
	provider Provider
	model    string
	replies  []func(ctx context.Context) (*BackendResponse, error)
	requests []BackendRequest
}

func (b *scriptedBackend) Provider() Provider { return b.provider }
func (b *scriptedBackend) Model() string      { return b.model }

func (b *scriptedBackend) Chat(ctx context.Context, req BackendRequest) (*BackendResponse, error) {
	b.requests = append(b.requests, req)
	i := len(b.requests) - 1
	if i >= len(b.replies) {
		return nil, errors.New("unexpected call")
	}
	return b.replies[i](ctx)
}

func reply(content string, in, out int) func(context.Context) (*BackendResponse, error) {
	return func(context.Context) (*BackendResponse, error) {
		return &BackendResponse{Content: content, PromptTokens: in, CompletionTokens: out}, nil
	}
}

func fail(err error) func(context.Context) (*BackendResponse, error) {
	return func(context.Context) (*BackendResponse, error) { return nil, err }
}

const validPlan = `{"plan_name": "Upper Lower Hypertrophy", "sessions": []}`

func newBackends() (*scriptedBackend, *scriptedBackend) {
	return &scriptedBackend{provider: ProviderOllama, model: "gemma2"},
		&scriptedBackend{provider: ProviderOpenRouter, model: "openai/gpt-4o-mini"}
}

func planRequest(records *[]CallRecord) Request {
	return Request{
		Messages:         []Message{{Role: "user", Content: "plan"}},
		MaxTokens:        3500,
		FallbackToRemote: true,
		RequiredKeys:     []string{"plan_name", "sessions"},
		OnCall:           func(r CallRecord) { *records = append(*records, r) },
	}
}

func TestGenerateJSON_LocalSuccess(t *testing.T) {
	local, remote := newBackends()
	local.replies = append(local.replies, reply(validPlan, 1200, 800))

	var records []CallRecord
	c := NewClient(local, remote, ClientConfig{LocalEnabled: true}, nil)
	comp, err := c.GenerateJSON(context.Background(), planRequest(&records))
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, comp.Provider)
	assert.Equal(t, "Upper Lower Hypertrophy", comp.Data["plan_name"])
	assert.Zero(t, comp.CostEUR, "local calls are free")
	assert.Empty(t, remote.requests)
	require.Len(t, records, 1)
	assert.True(t, records[0].Success)
	assert.True(t, local.requests[0].JSONMode)
	assert.Equal(t, 3500, local.requests[0].MaxTokens)
}

func TestGenerateJSON_FallbackOnTransportError(t *testing.T) {
	local, remote := newBackends()
	local.replies = append(local.replies, fail(errors.New("connection refused")))
	remote.replies = append(remote.replies, reply(validPlan, 2000, 1000))

	var records []CallRecord
	c := NewClient(local, remote, ClientConfig{LocalEnabled: true}, nil)
	comp, err := c.GenerateJSON(context.Background(), planRequest(&records))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenRouter, comp.Provider)
	assert.InDelta(t, 2000*0.14/1e6+1000*0.55/1e6, comp.CostEUR, 1e-9)
	require.Len(t, records, 2)
	assert.False(t, records[0].Success)
	assert.Error(t, records[0].Err)
	assert.True(t, records[1].Success)
}

func TestGenerateJSON_FallbackOnSchemaMismatch(t *testing.T) {
	local, remote := newBackends()
	local.replies = append(local.replies, reply(`{"name": "no sessions here"}`, 100, 50))
	remote.replies = append(remote.replies, reply(validPlan, 100, 50))

	var records []CallRecord
	c := NewClient(local, remote, ClientConfig{LocalEnabled: true}, nil)
	_, err := c.GenerateJSON(context.Background(), planRequest(&records))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.ErrorIs(t, records[0].Err, ErrSchemaMismatch)
}

func TestGenerateJSON_FallbackOnNonJSON(t *testing.T) {
	local, remote := newBackends()
	local.replies = append(local.replies, reply("Sure! Here is a plan: Day 1 ...", 100, 50))
	remote.replies = append(remote.replies, reply(validPlan, 100, 50))

	var records []CallRecord
	c := NewClient(local, remote, ClientConfig{LocalEnabled: true}, nil)
	_, err := c.GenerateJSON(context.Background(), planRequest(&records))
	require.NoError(t, err)
	assert.ErrorIs(t, records[0].Err, ErrInvalidJSON)
}

func TestGenerateJSON_NoFallbackWhenDisabled(t *testing.T) {
	local, remote := newBackends()
	local.replies = append(local.replies, fail(errors.New("boom")))

	var records []CallRecord
	req := planRequest(&records)
	req.FallbackToRemote = false

	c := NewClient(local, remote, ClientConfig{LocalEnabled: true}, nil)
	_, err := c.GenerateJSON(context.Background(), req)
	require.Error(t, err)
	assert.Len(t, records, 1)
	assert.Empty(t, remote.requests)
}

func TestGenerateJSON_RemoteOnly(t *testing.T) {
	tests := []struct {
		name         string
		useRemote    bool
		localEnabled bool
	}{
		{"use remote requested", true, true},
		{"local disabled", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, remote := newBackends()
			remote.replies = append(remote.replies, reply(validPlan, 10, 10))

			var records []CallRecord
			req := planRequest(&records)
			req.UseRemote = tt.useRemote

			c := NewClient(local, remote, ClientConfig{LocalEnabled: tt.localEnabled}, nil)
			comp, err := c.GenerateJSON(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, ProviderOpenRouter, comp.Provider)
			assert.Empty(t, local.requests)
			assert.Len(t, records, 1)
		})
	}
}

func TestGenerateJSON_ResolvedModelIdUsesRequestedRate(t *testing.T) {
	local, remote := newBackends()
	remote.replies = append(remote.replies, func(context.Context) (*BackendResponse, error) {
		return &BackendResponse{Content: validPlan, Model: "openai/gpt-4o-mini-2024-07-18",
			PromptTokens: 1_000_000, CompletionTokens: 1_000_000}, nil
	})

	var records []CallRecord
	req := planRequest(&records)
	req.UseRemote = true

	comp, err := NewClient(local, remote, ClientConfig{}, nil).GenerateJSON(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini-2024-07-18", comp.Model)
	rate := DefaultPricing["openai/gpt-4o-mini"]
	assert.InDelta(t, rate.InputPerMillion+rate.OutputPerMillion, comp.CostEUR, 1e-9)
}

func TestGenerateJSON_RemoteFailureIsTerminal(t *testing.T) {
	local, remote := newBackends()
	remote.replies = append(remote.replies, fail(errors.New("401 unauthorized")))

	var records []CallRecord
	req := planRequest(&records)
	req.UseRemote = true

	c := NewClient(local, remote, ClientConfig{LocalEnabled: true}, nil)
	_, err := c.GenerateJSON(context.Background(), req)
	require.Error(t, err)
	assert.Len(t, records, 1)
}

func TestGenerateJSON_NoBackend(t *testing.T) {
	c := NewClient(nil, nil, ClientConfig{}, nil)
	_, err := c.GenerateJSON(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestGenerateJSON_ClampsTokens(t *testing.T) {
	local, remote := newBackends()
	remote.replies = append(remote.replies, reply(`{}`, 1, 1))

	c := NewClient(local, remote, ClientConfig{}, nil)
	_, err := c.GenerateJSON(context.Background(), Request{MaxTokens: 9000, UseRemote: true})
	require.NoError(t, err)
	assert.Equal(t, MaxTokensCeiling, remote.requests[0].MaxTokens)
}

func TestGenerateJSON_Timeout(t *testing.T) {
	local, remote := newBackends()
	remote.replies = append(remote.replies, func(ctx context.Context) (*BackendResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	var records []CallRecord
	req := planRequest(&records)
	req.UseRemote = true

	c := NewClient(local, remote, ClientConfig{Timeout: 20 * time.Millisecond}, nil)
	_, err := c.GenerateJSON(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
}

type openRouterBody struct {
	Model          string `json:"model"`
	MaxTokens      int    `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Reasoning *struct {
		Effort string `json:"effort"`
	} `json:"reasoning"`
}

func TestOpenRouterClient_Chat(t *testing.T) {
	var got openRouterBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"model":"openai/gpt-4o-mini","choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}],"usage":{"prompt_tokens":12,"completion_tokens":5}}`))
	}))
	defer srv.Close()

	c := NewOpenRouterClient(srv.URL+"/", "sk-test", "")
	resp, err := c.Chat(context.Background(), BackendRequest{
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.Equal(t, 12, resp.PromptTokens)
	assert.Equal(t, 5, resp.CompletionTokens)
	assert.Equal(t, DefaultOpenRouterModel, got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.NotNil(t, got.Reasoning)
	assert.Equal(t, "none", got.Reasoning.Effort)
	assert.Equal(t, 2000, got.MaxTokens)
}

func TestOpenRouterClient_PlainModeKeepsReasoning(t *testing.T) {
	var got openRouterBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"model":"openai/gpt-4o-mini-2024-07-18","choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1}}`))
	}))
	defer srv.Close()

	resp, err := NewOpenRouterClient(srv.URL, "sk-test", "").Chat(context.Background(), BackendRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, "openai/gpt-4o-mini-2024-07-18", resp.Model)
	assert.Nil(t, got.ResponseFormat)
	assert.Nil(t, got.Reasoning)
}

func TestOpenRouterClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","code":401}}`))
	}))
	defer srv.Close()

	_, err := NewOpenRouterClient(srv.URL, "bad", "m").Chat(context.Background(), BackendRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid key")

	_, err = NewOpenRouterClient(srv.URL, "", "m").Chat(context.Background(), BackendRequest{})
	assert.Error(t, err, "missing key must fail before the request")
}

func TestOllamaClient_Chat(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"model":"gemma2","message":{"role":"assistant","content":"{\"a\":1}"},"done":true,"total_duration":1500000000,"prompt_eval_count":30,"eval_count":20}`))
	}))
	defer srv.Close()

	resp, err := NewOllamaClient(srv.URL, "gemma2").Chat(context.Background(), BackendRequest{
		Temperature: 0.3, MaxTokens: 2500, JSONMode: true,
	})
	require.NoError(t, err)

	assert.False(t, got.Stream)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, 2500, got.Options.NumPredict)
	assert.InDelta(t, 0.3, got.Options.Temperature, 1e-9)
	assert.Equal(t, `{"a":1}`, resp.Content)
	assert.Equal(t, 20, resp.CompletionTokens)
	assert.Equal(t, 1500*time.Millisecond, resp.Duration)
}
