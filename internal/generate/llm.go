package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/anthropics/gambit-engine/internal/domain"
)

// Options selects and configures the backing model.
type Options struct {
	Provider    string // "ollama", "openai", "anthropic"
	Model       string
	Temperature float64
	BaseURL     string
	APIKey      string
}

// LLMGenerator implements Generator on top of a langchaingo model.
type LLMGenerator struct {
	model       llms.Model
	temperature float64
}

// New builds an LLMGenerator for the configured provider.
func New(opts Options) (*LLMGenerator, error) {
	model, err := newModel(opts)
	if err != nil {
		return nil, err
	}
	return &LLMGenerator{model: model, temperature: opts.Temperature}, nil
}

// NewFromModel wraps an existing model. Used by tests.
func NewFromModel(model llms.Model, temperature float64) *LLMGenerator {
	return &LLMGenerator{model: model, temperature: temperature}
}

func newModel(opts Options) (llms.Model, error) {
	switch opts.Provider {
	case "ollama":
		serverURL := opts.BaseURL
		if serverURL == "" {
			serverURL = "http://localhost:11434"
		}
		return ollama.New(
			ollama.WithServerURL(serverURL),
			ollama.WithModel(opts.Model),
		)
	case "openai":
		return openai.New(
			openai.WithModel(opts.Model),
			openai.WithToken(opts.APIKey),
		)
	case "anthropic":
		return anthropic.New(
			anthropic.WithModel(opts.Model),
			anthropic.WithToken(opts.APIKey),
		)
	default:
		return nil, domain.NewEngineError(domain.ErrProviderUnknown.Code,
			fmt.Sprintf("unknown generator provider: %s", opts.Provider))
	}
}

// Propose renders the prompt, invokes the model, and decodes the
// structured proposal from the response.
func (g *LLMGenerator) Propose(ctx context.Context, req Request) (domain.MoveProposal, error) {
	prompt := BuildPrompt(req)

	response, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
		llms.WithTemperature(g.temperature))
	if err != nil {
		return domain.MoveProposal{}, domain.WrapEngineError(
			domain.ErrGeneratorFailed.Code, domain.ErrGeneratorFailed.Message, err)
	}

	return DecodeProposal(response)
}

// DecodeProposal extracts the JSON object from a raw model response and
// unmarshals it into a proposal. Field-level emptiness is not an error
// here; the validator owns that policy.
func DecodeProposal(response string) (domain.MoveProposal, error) {
	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return domain.MoveProposal{}, domain.WrapEngineError(
			domain.ErrProposalDecode.Code, domain.ErrProposalDecode.Message, err)
	}

	var p domain.MoveProposal
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return domain.MoveProposal{}, domain.WrapEngineError(
			domain.ErrProposalDecode.Code, domain.ErrProposalDecode.Message, err)
	}
	return p, nil
}
