// Package analysis asks a language model for a triage suggestion on
// free-text clinical observations.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/tidwall/gjson"

	"medchain/internal/config"
	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/services"
)

const systemPrompt = `You assist clinicians by triaging free-text observations.
Reply with a single JSON object and nothing else:
{"suggestedDiagnosis": string, "summary": string, "severity": "Low"|"Moderate"|"High"|"Critical", "recommendedActions": [string]}
The summary is at most two sentences. Suggestions are reviewed by a doctor before use.`

// Generator is the subset of llmprovider.Provider the analyzer needs
type Generator interface {
	GenerateResponse(ctx context.Context, req *llmprovider.GenerateRequest) (*llmprovider.GenerateResponse, error)
}

// Analyzer implements services.Analyzer on top of an LLM provider
type Analyzer struct {
	generator Generator
	model     string
	logger    *slog.Logger
}

var _ services.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates an analyzer that sends every request to model
func NewAnalyzer(generator Generator, model string, logger *slog.Logger) *Analyzer {
	return &Analyzer{generator: generator, model: model, logger: logger}
}

func (a *Analyzer) Analyze(ctx context.Context, symptoms, notes string) (*models.Analysis, error) {
	symptoms = strings.TrimSpace(symptoms)
	notes = strings.TrimSpace(notes)
	if symptoms == "" && notes == "" {
		return nil, &domain.ValidationError{Message: "symptoms or notes are required for analysis"}
	}
	if len(symptoms) > config.MaxClinicalFieldLength || len(notes) > config.MaxNotesLength {
		return nil, &domain.ValidationError{Message: "observations too long for analysis"}
	}

	prompt := fmt.Sprintf("Symptoms:\n%s\n\nDoctor notes:\n%s", symptoms, notes)
	system := systemPrompt
	resp, err := a.generator.GenerateResponse(ctx, &llmprovider.GenerateRequest{
		Messages: []llmprovider.Message{{
			Role: "user",
			Blocks: []*llmprovider.Block{{
				BlockType:   "text",
				Sequence:    0,
				TextContent: &prompt,
			}},
		}},
		Model:  a.model,
		Params: &llmprovider.RequestParams{System: &system},
	})
	if err != nil {
		return nil, fmt.Errorf("generate analysis: %w", err)
	}

	text := responseText(resp)
	result := ParseReply(text)
	a.logger.Debug("analysis generated",
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"severity", result.Severity,
	)
	return result, nil
}

func responseText(resp *llmprovider.GenerateResponse) string {
	var sb strings.Builder
	for _, block := range resp.Blocks {
		if block.BlockType == "text" && block.TextContent != nil {
			sb.WriteString(*block.TextContent)
		}
	}
	return sb.String()
}

// ParseReply extracts an Analysis from a model reply.
// The JSON object may be wrapped in prose or a code fence. A reply with no
// object becomes a summary-only analysis with Moderate severity.
func ParseReply(text string) *models.Analysis {
	obj := extractObject(text)
	if obj == "" {
		return &models.Analysis{
			Summary:  truncate(strings.TrimSpace(text), config.MaxClinicalFieldLength),
			Severity: models.SeverityModerate,
		}
	}

	parsed := gjson.Parse(obj)
	out := &models.Analysis{
		SuggestedDiagnosis: strings.TrimSpace(parsed.Get("suggestedDiagnosis").String()),
		Summary:            truncate(strings.TrimSpace(parsed.Get("summary").String()), config.MaxClinicalFieldLength),
		Severity:           models.ParseSeverity(parsed.Get("severity").String()),
	}
	for _, action := range parsed.Get("recommendedActions").Array() {
		if s := strings.TrimSpace(action.String()); s != "" {
			out.RecommendedActions = append(out.RecommendedActions, s)
		}
	}
	return out
}

func extractObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return ""
	}
	return candidate
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary
	for max > 0 && !utf8RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
