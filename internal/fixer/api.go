package fixer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/tabtidy/tabtidy/internal/converge"
)

// DefaultModel is the model used when neither config nor environment
// overrides it.
const DefaultModel = "claude-sonnet-4-5-20250929"

// modelEnvVar overrides the model without touching config files.
const modelEnvVar = "TABTIDY_MODEL"

// Markers the API fixer uses to fence the corrected document in its reply.
const (
	docFenceOpen  = "<corrected-workbook>"
	docFenceClose = "</corrected-workbook>"
)

// GetModel resolves the model: explicit value, then env override, then
// default.
func GetModel(configured string) string {
	if configured != "" {
		return configured
	}
	if model := os.Getenv(modelEnvVar); model != "" {
		return model
	}
	return DefaultModel
}

// APIConfig configures the direct API fixer.
type APIConfig struct {
	APIKey      string // falls back to ANTHROPIC_API_KEY
	Model       string
	MaxTokens   int64 // default 64000; the reply must fit the whole document
	Concurrency int64 // default 1; the loop is sequential anyway
}

// APIFixer corrects the working copy through the Anthropic API: it sends the
// document plus the violation list and writes back the corrected document
// the model returns between fence markers.
type APIFixer struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	sem       *semaphore.Weighted
}

var _ converge.Fixer = (*APIFixer)(nil)

// NewAPIFixer builds the API fixer.
func NewAPIFixer(cfg APIConfig) (*APIFixer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 64000
	}
	concurrency := cfg.Concurrency
	if concurrency == 0 {
		concurrency = 1
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &APIFixer{
		client:    &client,
		model:     GetModel(cfg.Model),
		maxTokens: maxTokens,
		sem:       semaphore.NewWeighted(concurrency),
	}, nil
}

// Fix sends the working copy and violations to the model and applies the
// corrected document it returns. A reply truncated at the token ceiling is
// reported as budget exhaustion and the working copy is left untouched.
func (f *APIFixer) Fix(ctx context.Context, req *converge.FixRequest) (*converge.FixResult, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquiring API slot: %w", err)
	}
	defer f.sem.Release(1)

	doc, err := os.ReadFile(req.WorkingCopy)
	if err != nil {
		return nil, fmt.Errorf("reading working copy: %w", err)
	}

	prompt := BuildPrompt(req) + fmt.Sprintf(
		"\nReturn the complete corrected workbook XML between %s and %s markers, with no other changes.\n\nCurrent document:\n%s\n",
		docFenceOpen, docFenceClose, string(doc))

	response, err := f.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(f.model),
		MaxTokens: f.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}
	transcript := strings.Split(responseText, "\n")

	if response.StopReason == "max_tokens" {
		// The corrected document did not fit; applying a truncated reply
		// would corrupt the working copy.
		return &converge.FixResult{Transcript: transcript, BudgetExhausted: true}, nil
	}

	corrected, ok := extractFenced(responseText)
	if ok {
		if err := os.WriteFile(req.WorkingCopy, []byte(corrected), 0644); err != nil {
			return nil, fmt.Errorf("writing corrected working copy: %w", err)
		}
	}

	return &converge.FixResult{
		Transcript:      transcript,
		BudgetExhausted: BudgetExhausted(transcript),
	}, nil
}

func extractFenced(text string) (string, bool) {
	start := strings.Index(text, docFenceOpen)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(docFenceOpen):]
	end := strings.Index(rest, docFenceClose)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
