package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"liftplan/internal/logger"
)

const (
	// MaxTokensCeiling жёсткий потолок для любого запроса
	MaxTokensCeiling = 5000
	// DefaultTimeout лимит времени на один вызов LLM
	DefaultTimeout = 120 * time.Second
)

var (
	// ErrInvalidJSON ответ не удалось разобрать как JSON-объект
	ErrInvalidJSON = errors.New("ответ LLM не является JSON-объектом")
	// ErrSchemaMismatch в объекте нет обязательных ключей
	ErrSchemaMismatch = errors.New("ответ LLM не соответствует схеме")
	// ErrNoBackend не настроен ни один бэкенд
	ErrNoBackend = errors.New("нет доступного LLM-бэкенда")
)

// Message - сообщение для чата
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BackendRequest запрос к конкретному бэкенду
type BackendRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// BackendResponse ответ бэкенда до разбора JSON
type BackendResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// Backend один LLM-провайдер (локальный Ollama или OpenRouter)
type Backend interface {
	Provider() Provider
	Model() string
	Chat(ctx context.Context, req BackendRequest) (*BackendResponse, error)
}

// Usage расход токенов
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// CallRecord итог одной попытки вызова, передаётся в Request.OnCall
type CallRecord struct {
	Provider Provider
	Model    string
	Usage    Usage
	CostEUR  float64
	Success  bool
	Err      error
}

// Request параметры генерации JSON
type Request struct {
	Messages         []Message
	MaxTokens        int
	Temperature      float64
	UseRemote        bool     // сразу OpenRouter, без локальной модели
	FallbackToRemote bool     // при ошибке локальной модели повторить на OpenRouter
	RequiredKeys     []string // ключи верхнего уровня, без которых ответ считается ошибкой схемы

	// OnCall вызывается синхронно после каждой попытки, до следующей
	OnCall func(CallRecord)
}

// Completion разобранный ответ
type Completion struct {
	Data     map[string]any `json:"data"`
	Raw      string         `json:"raw"`
	Provider Provider       `json:"provider"`
	Model    string         `json:"model"`
	Usage    Usage          `json:"usage"`
	CostEUR  float64        `json:"cost_eur"`
}

// Client выбирает бэкенд и выполняет fallback на OpenRouter
type Client struct {
	local        Backend
	remote       Backend
	localEnabled bool
	timeout      time.Duration
	pricing      Pricing
	log          *logger.Logger
}

// ClientConfig настройки клиента
type ClientConfig struct {
	LocalEnabled bool
	Timeout      time.Duration
	Pricing      Pricing // nil - DefaultPricing
}

// NewClient создаёт клиент; любой из бэкендов может быть nil
func NewClient(local, remote Backend, cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Pricing == nil {
		cfg.Pricing = DefaultPricing
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		local:        local,
		remote:       remote,
		localEnabled: cfg.LocalEnabled,
		timeout:      cfg.Timeout,
		pricing:      cfg.Pricing,
		log:          log,
	}
}

// GenerateJSON выполняет один chat completion и возвращает разобранный JSON-объект.
// Локальная модель пробуется первой, если она включена и не запрошен OpenRouter.
func (c *Client) GenerateJSON(ctx context.Context, req Request) (*Completion, error) {
	req.MaxTokens = clampTokens(req.MaxTokens)

	useRemote := req.UseRemote || !c.localEnabled || c.local == nil
	if useRemote {
		if c.remote == nil {
			return nil, ErrNoBackend
		}
		return c.call(ctx, c.remote, req)
	}

	comp, err := c.call(ctx, c.local, req)
	if err == nil {
		return comp, nil
	}
	if !req.FallbackToRemote || c.remote == nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, err
	}

	c.log.Warn("локальная модель не справилась, пробуем OpenRouter",
		"local_model", c.local.Model(), "remote_model", c.remote.Model(), "error", err)
	return c.call(ctx, c.remote, req)
}

func (c *Client) call(ctx context.Context, b Backend, req Request) (*Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rec := CallRecord{Provider: b.Provider(), Model: b.Model()}
	report := func() {
		if req.OnCall != nil {
			req.OnCall(rec)
		}
	}

	resp, err := b.Chat(callCtx, BackendRequest{
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%s: превышен лимит %s: %w", b.Provider(), c.timeout, err)
		} else {
			err = fmt.Errorf("%s: %w", b.Provider(), err)
		}
		rec.Err = err
		report()
		c.log.Error("ошибка вызова LLM", "provider", rec.Provider, "model", rec.Model, "error", err)
		return nil, err
	}

	if resp.Model != "" {
		rec.Model = resp.Model
	}
	rec.Usage = Usage{PromptTokens: resp.PromptTokens, CompletionTokens: resp.CompletionTokens}
	if b.Provider() != ProviderOllama {
		rec.CostEUR = c.pricing.Cost(rec.Usage, rec.Model, b.Model())
	}

	data, err := ParseObject(resp.Content)
	if err == nil {
		err = checkKeys(data, req.RequiredKeys)
	}
	if err != nil {
		rec.Err = fmt.Errorf("%s: %w", b.Provider(), err)
		report()
		c.log.Error("некорректный ответ LLM", "provider", rec.Provider, "model", rec.Model, "error", err,
			"content", truncate(resp.Content, 300))
		return nil, rec.Err
	}

	rec.Success = true
	report()
	c.log.Info("ответ LLM получен", "provider", GetProviderName(rec.Provider), "model", rec.Model,
		"tokens_in", rec.Usage.PromptTokens, "tokens_out", rec.Usage.CompletionTokens,
		"cost_eur", rec.CostEUR, "duration", resp.Duration)

	return &Completion{
		Data:     data,
		Raw:      resp.Content,
		Provider: rec.Provider,
		Model:    rec.Model,
		Usage:    rec.Usage,
		CostEUR:  rec.CostEUR,
	}, nil
}

func checkKeys(data map[string]any, keys []string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := data[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: нет ключей %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}

func clampTokens(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	if n > MaxTokensCeiling {
		return MaxTokensCeiling
	}
	return n
}

// truncate обрезает до maxLen байт по границе руны
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
