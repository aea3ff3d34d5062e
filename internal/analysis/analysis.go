// Package analysis asks a language model for a short assessment of a wallet's
// holding pattern.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"daio-rewards/internal/domain"
	"daio-rewards/internal/observability"
)

// Defaults.
const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 300
	DefaultTimeout   = 60 * time.Second

	// confidenceScale maps a wallet seed onto a percentage-style confidence.
	confidenceScale = 100
)

// NoHoldingsText is returned without calling the model when a report is empty.
const NoHoldingsText = "No holdings found to analyze."

// ErrEmptyResponse is returned when the model produces no choices.
var ErrEmptyResponse = errors.New("no choices in LLM response")

// Analyzer produces an analysis for a holding report.
// A nil analysis with a nil error means analysis is unavailable.
type Analyzer interface {
	Analyze(ctx context.Context, report *domain.HoldingReport) (*domain.Analysis, error)
}

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// SeedSource supplies the per-wallet seed used as the analysis confidence.
type SeedSource interface {
	Generate(address string) (int, error)
}

// Config configures Service.
type Config struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Service implements Analyzer on top of an LLM.
type Service struct {
	tracer trace.Tracer
	llm    LLMClient
	seeds  SeedSource
	cfg    Config
}

// Compile-time interface check.
var _ Analyzer = (*Service)(nil)

// NewService creates an analysis service.
func NewService(tracer trace.Tracer, llm LLMClient, seeds SeedSource, cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{tracer: tracer, llm: llm, seeds: seeds, cfg: cfg}
}

// Analyze asks the model to assess holder behaviour and loyalty.
func (s *Service) Analyze(ctx context.Context, report *domain.HoldingReport) (*domain.Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet", report.WalletAddress),
		attribute.Int("holdings", len(report.Holdings)),
	)

	confidence, err := s.confidence(report.WalletAddress)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(report.Holdings) == 0 {
		return &domain.Analysis{Text: NoHoldingsText, Confidence: confidence}, nil
	}

	text, err := s.callLLM(ctx, BuildPrompt(report))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("analysis unavailable: %w", err)
	}

	return &domain.Analysis{
		Text:       text,
		Confidence: confidence,
		Model:      s.cfg.Model,
	}, nil
}

func (s *Service) confidence(wallet string) (float64, error) {
	seed, err := s.seeds.Generate(wallet)
	if err != nil {
		return 0, fmt.Errorf("generate seed: %w", err)
	}
	return float64(seed%confidenceScale) / confidenceScale, nil
}

func (s *Service) callLLM(ctx context.Context, prompt string) (reply string, err error) {
	ctx, span := s.tracer.Start(ctx, "analysis.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.cfg.Model),
		attribute.Int("llm.max_tokens", s.cfg.MaxTokens),
	)

	start := time.Now()
	defer func() {
		observability.RecordAnalysis(time.Since(start).Seconds(), err)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:     s.cfg.Model,
		MaxTokens: openai.Int(int64(s.cfg.MaxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	reply = strings.TrimSpace(completion.Choices[0].Message.Content)
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// BuildPrompt renders the analysis request for a report.
func BuildPrompt(report *domain.HoldingReport) string {
	days := report.Durations()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%d", d)
	}

	var b strings.Builder
	b.WriteString("Analyze this token holding pattern and provide insights about holder behavior and loyalty level. Be concise:\n")
	fmt.Fprintf(&b, "Wallet %s holding pattern:\n", report.WalletAddress)
	fmt.Fprintf(&b, "Total tokens: %d\n", len(report.Holdings))
	fmt.Fprintf(&b, "Holding durations: [%s]\n", strings.Join(parts, ", "))
	return b.String()
}

// Disabled is an Analyzer used when no model is configured.
type Disabled struct{}

// Analyze always reports that no analysis is available.
func (Disabled) Analyze(context.Context, *domain.HoldingReport) (*domain.Analysis, error) {
	return nil, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

// NewOpenAIClient creates an LLMClient. An empty baseURL uses the SDK default.
func NewOpenAIClient(apiKey, baseURL string) LLMClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openaiClient{client: openai.NewClient(opts...)}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
