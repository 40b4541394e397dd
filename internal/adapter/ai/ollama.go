package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docqa-ai/docqa/internal/domain"
	"github.com/docqa-ai/docqa/internal/port"
)

// EndpointConfig holds the connection settings for a single Ollama-compatible
// endpoint.
type EndpointConfig struct {
	BaseURL string        // e.g. http://localhost:11434 or https://api.ollama.com
	Model   string        // e.g. nomic-embed-text, llama3.2:3b
	Token   string        // Bearer token for Ollama Cloud (empty = no auth)
	Timeout time.Duration // per-call deadline; zero uses a 60s default
}

func (c EndpointConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

// OllamaProvider implements port.Embedder and port.Generator using the
// Ollama REST API. Embedding and generation can target different endpoints
// (different URLs, models, and tokens). Every outbound call carries a
// bounded deadline; failures surface as port.BackendError and are never
// retried here.
type OllamaProvider struct {
	embed      EndpointConfig
	gen        EndpointConfig
	httpClient *http.Client
}

// NewOllamaProvider creates an Ollama-backed provider with separate
// embed/generate endpoint configs.
func NewOllamaProvider(embed, gen EndpointConfig) *OllamaProvider {
	backstop := embed.timeout()
	if gen.timeout() > backstop {
		backstop = gen.timeout()
	}
	return &OllamaProvider{
		embed:      embed,
		gen:        gen,
		httpClient: &http.Client{Timeout: backstop},
	}
}

// Name identifies the implementation for startup logging.
func (o *OllamaProvider) Name() string { return "ollama/" + o.embed.Model }

// Ping probes the embed endpoint. Used once at startup to decide whether the
// remote embedder is available or the local fallback must take over.
func (o *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, o.embed.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.embed.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if o.embed.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.embed.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// EmbedOne generates a vector embedding for a single text.
func (o *OllamaProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call, one vector
// per input in input order.
func (o *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]interface{}{
		"model": o.embed.Model,
		"input": texts,
	}

	body, err := o.post(ctx, o.embed, "/api/embed", payload)
	if err != nil {
		return nil, port.NewBackendError(port.StageEmbed, err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, port.NewBackendError(port.StageEmbed, fmt.Errorf("decode embed response: %w", err))
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, port.NewBackendError(port.StageEmbed,
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings)))
	}

	return resp.Embeddings, nil
}

// Generate sends the prompt to the generation endpoint and returns the
// answer text.
func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	if opts.Model == "" {
		opts.Model = o.gen.Model
	}
	opts = opts.WithDefaults()

	payload := map[string]interface{}{
		"model":  opts.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}

	body, err := o.post(ctx, o.gen, "/api/generate", payload)
	if err != nil {
		return "", port.NewBackendError(port.StageGenerate, err)
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", port.NewBackendError(port.StageGenerate, fmt.Errorf("decode generate response: %w", err))
	}

	return resp.Response, nil
}

// post is a helper for POST requests to an Ollama endpoint (with optional
// bearer token and a per-call deadline).
func (o *OllamaProvider) post(ctx context.Context, cfg EndpointConfig, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
