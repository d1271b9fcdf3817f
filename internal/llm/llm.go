package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOllamaURL  = "http://localhost:11434"
)

// Provider is the interface for text-generation providers.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

// Config selects and configures a provider.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	OllamaURL string
	// Timeout bounds one generation call. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.Timeout}
}

// GeminiProvider generates text with Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	// initErr is set when the client could not be built (for example a
	// missing API key); it is returned from every Generate call.
	initErr error
	model   string
}

// NewGeminiProvider creates a new Gemini provider. Client construction
// errors are deferred to Generate so a missing key surfaces as a failed
// generation rather than a startup error.
func NewGeminiProvider(ctx context.Context, cfg Config) *GeminiProvider {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient(),
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return &GeminiProvider{initErr: fmt.Errorf("creating genai client: %w", err), model: model}
	}
	return &GeminiProvider{client: client, model: model}
}

func (g *GeminiProvider) Name() string  { return "gemini" }
func (g *GeminiProvider) Model() string { return g.model }

// Generate sends a single-turn prompt and returns the first candidate's
// first text part.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if g.initErr != nil {
		return "", g.initErr
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", fmt.Errorf("no content in gemini response")
	}
	if content.Parts[0].Text == "" {
		return "", fmt.Errorf("empty text in gemini response")
	}
	return content.Parts[0].Text, nil
}

// OpenAIProvider talks to any OpenAI-compatible chat completions API:
// OpenAI itself, OpenRouter or a local Ollama.
type OpenAIProvider struct {
	name   string
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible endpoint.
// An empty baseURL uses the library default (api.openai.com).
func NewOpenAIProvider(name, baseURL string, cfg Config) *OpenAIProvider {
	apiKey := cfg.APIKey
	if apiKey == "" && name == "ollama" {
		apiKey = "ollama"
	}

	oc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		oc.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	oc.HTTPClient = cfg.httpClient()

	return &OpenAIProvider{
		name:   name,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(oc),
	}
}

func (o *OpenAIProvider) Name() string  { return o.name }
func (o *OpenAIProvider) Model() string { return o.model }

// Generate sends a single user message and returns the first choice.
func (o *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", o.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", o.name)
	}
	if resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty message in %s response", o.name)
	}
	return resp.Choices[0].Message.Content, nil
}

// CreateProvider creates a provider based on configuration. Only an unknown
// provider name is an error.
func CreateProvider(ctx context.Context, cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var p Provider
	switch name {
	case "", "gemini":
		p = NewGeminiProvider(ctx, cfg)
	case "openai":
		p = NewOpenAIProvider("openai", cfg.BaseURL, cfg)
	case "openrouter":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
		p = NewOpenAIProvider("openrouter", baseURL, cfg)
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			ollama := cfg.OllamaURL
			if ollama == "" {
				ollama = defaultOllamaURL
			}
			baseURL = strings.TrimSuffix(ollama, "/") + "/v1"
		}
		p = NewOpenAIProvider("ollama", baseURL, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.APIKey == "" && name != "ollama" {
		log.WithField("provider", p.Name()).Warn("No API key configured; generation requests will fail")
	}
	log.WithFields(log.Fields{"provider": p.Name(), "model": p.Model()}).Info("Using LLM provider")
	return p, nil
}
