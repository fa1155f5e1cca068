package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentflare-ai/go-jsonschema"
	"github.com/agentflare-ai/go-pipeline"
	"github.com/agentflare-ai/hvml-go/value"
	"golang.org/x/time/rate"

	genai "google.golang.org/genai"
	ollamaapi "github.com/ollama/ollama/api"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Transport performs the actual I/O behind a Request; HTTPTransport and
// LLMTransport are the two concrete kinds the `fetch`/`fetch-stream`-style
// elements and `GPT`/`LLM`-style builtins drive respectively.
type Transport interface {
	Do(ctx context.Context, req *Request, input value.Value) (value.Value, error)
}

// HTTPTransport issues a plain HTTP request and decodes its body into an
// HVML value, the RAW/SYNC request path (spec component I) for document
// sources and generic REST calls.
type HTTPTransport struct {
	Client *http.Client
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Do expects input to be an object with at least a "url" field and
// optionally "method"/"body".
func (t *HTTPTransport) Do(ctx context.Context, req *Request, input value.Value) (value.Value, error) {
	obj, ok := input.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("fetch: http transport expects an object, got %s", input.Kind())
	}
	urlVal, ok := obj.Get("url")
	if !ok {
		return nil, fmt.Errorf("fetch: http transport requires a \"url\" field")
	}
	method := http.MethodGet
	if m, ok := obj.Get("method"); ok {
		method = value.ToString(m)
	}

	ctx, cancel := context.WithCancel(ctx)
	req.AttachCancel(cancel)
	defer cancel()

	var body io.Reader
	if b, ok := obj.Get("body"); ok {
		body = &stringReader{s: value.ToString(b)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, value.ToString(urlVal), body)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read response: %w", err)
	}

	out := value.MakeObject()
	out.Set(ctx, "status", value.MakeInt64(int64(resp.StatusCode)))
	out.Set(ctx, "body", value.MakeString(string(data)))
	return out, nil
}

type stringReader struct {
	s   string
	pos int
}

func (r *stringReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.pos:])
	r.pos += n
	return n, nil
}

// LLMProvider selects which chat-completion backend an LLMTransport call
// targets.
type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderOllama LLMProvider = "ollama"
	ProviderGemini LLMProvider = "gemini"
)

// LLMTransport drives an async chat-completion call against one of three
// provider SDKs, rate-limited by a single requests-per-minute limiter per
// transport instance. ToolSchemas holds the JSON schemas validateToolArgs
// checks tool-call arguments against; Do does not call validateToolArgs.
type LLMTransport struct {
	Provider LLMProvider

	openaiClient *openai.Client
	ollamaClient *ollamaapi.Client
	geminiClient *genai.Client

	ToolSchemas map[string]*jsonschema.Schema
	limiter     *rate.Limiter
}

// llmWriter accumulates validation errors across the decode/validate
// pipeline stages, the same role ToolCallWriter plays in the teacher's
// streaming client.
type llmWriter struct {
	errs []error
}

// NewOpenAITransport builds an LLMTransport backed by the OpenAI API.
func NewOpenAITransport(apiKey string, rpm int) *LLMTransport {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &LLMTransport{
		Provider:     ProviderOpenAI,
		openaiClient: &client,
		ToolSchemas:  map[string]*jsonschema.Schema{},
		limiter:      rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

// NewOllamaTransport builds an LLMTransport backed by a local Ollama
// daemon.
func NewOllamaTransport(client *ollamaapi.Client, rpm int) *LLMTransport {
	return &LLMTransport{
		Provider:     ProviderOllama,
		ollamaClient: client,
		ToolSchemas:  map[string]*jsonschema.Schema{},
		limiter:      rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

// NewGeminiTransport builds an LLMTransport backed by Google's genai SDK.
func NewGeminiTransport(client *genai.Client, rpm int) *LLMTransport {
	return &LLMTransport{
		Provider:     ProviderGemini,
		geminiClient: client,
		ToolSchemas:  map[string]*jsonschema.Schema{},
		limiter:      rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

// Do expects input to be an object with a "prompt" string field (and
// optionally "model"); it returns an object with a "text" field holding
// the model's reply.
func (t *LLMTransport) Do(ctx context.Context, req *Request, input value.Value) (value.Value, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch: llm rate limit: %w", err)
	}

	obj, ok := input.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("fetch: llm transport expects an object, got %s", input.Kind())
	}
	promptVal, ok := obj.Get("prompt")
	if !ok {
		return nil, fmt.Errorf("fetch: llm transport requires a \"prompt\" field")
	}
	prompt := value.ToString(promptVal)

	ctx, cancel := context.WithCancel(ctx)
	req.AttachCancel(cancel)
	defer cancel()

	var (
		reply string
		err   error
	)
	switch t.Provider {
	case ProviderOpenAI:
		reply, err = t.callOpenAI(ctx, prompt)
	case ProviderOllama:
		reply, err = t.callOllama(ctx, prompt)
	case ProviderGemini:
		reply, err = t.callGemini(ctx, prompt)
	default:
		return nil, fmt.Errorf("fetch: unknown llm provider %q", t.Provider)
	}
	if err != nil {
		return nil, err
	}

	out := value.MakeObject()
	out.Set(ctx, "text", value.MakeString(reply))
	return out, nil
}

func (t *LLMTransport) callOpenAI(ctx context.Context, prompt string) (string, error) {
	resp, err := t.openaiClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("fetch: openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("fetch: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (t *LLMTransport) callOllama(ctx context.Context, prompt string) (string, error) {
	var reply string
	req := &ollamaapi.ChatRequest{
		Model:    "llama3",
		Messages: []ollamaapi.Message{{Role: "user", Content: prompt}},
	}
	err := t.ollamaClient.Chat(ctx, req, func(resp ollamaapi.ChatResponse) error {
		reply += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch: ollama chat: %w", err)
	}
	return reply, nil
}

func (t *LLMTransport) callGemini(ctx context.Context, prompt string) (string, error) {
	resp, err := t.geminiClient.Models.GenerateContent(ctx, "gemini-2.0-flash", genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("fetch: gemini generate content: %w", err)
	}
	return resp.Text(), nil
}

// validateToolArgs runs a go-pipeline decode/validate chain over a raw
// tool-call argument string against its registered schema, the pattern
// the teacher's openai streaming client uses for jsonDecoderStage before
// dispatching to the tool's handler.
func (t *LLMTransport) validateToolArgs(ctx context.Context, name string, rawArgs string) error {
	schema, ok := t.ToolSchemas[name]
	if !ok {
		return nil
	}

	decode := func(ctx context.Context, w *llmWriter, input string, next pipeline.Next[context.Context, *llmWriter, string]) error {
		if input == "" {
			w.errs = append(w.errs, fmt.Errorf("empty tool arguments for %s", name))
			return next(ctx, w, input)
		}
		return next(ctx, w, input)
	}
	validate := func(ctx context.Context, w *llmWriter, input string, next pipeline.Next[context.Context, *llmWriter, string]) error {
		if err := schema.ValidateString(input); err != nil {
			w.errs = append(w.errs, fmt.Errorf("tool %s args failed schema validation: %w", name, err))
		}
		return next(ctx, w, input)
	}

	w := &llmWriter{}
	p := pipeline.New(ctx, decode, validate)
	_ = p.Process(ctx, w, rawArgs)
	if len(w.errs) > 0 {
		return w.errs[0]
	}
	return nil
}
