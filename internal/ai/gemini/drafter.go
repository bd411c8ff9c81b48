package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/recruit-tracker/internal/candidate"
	"github.com/spigell/recruit-tracker/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Drafter asks Gemini for an outreach note.
type Drafter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewDrafter(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Drafter{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (d *Drafter) Draft(ctx context.Context, rec candidate.Record) (string, error) {
	// Contact details stay out of the prompt.
	payload := map[string]any{
		"name":            rec.Name,
		"position":        rec.Position,
		"appliedDate":     rec.AppliedDate,
		"status":          rec.Status.Label(),
		"skills":          rec.Skills,
		"experience":      rec.Experience,
		"location":        rec.Location,
		"lastContact":     rec.LastContact,
		"engagementScore": rec.EngagementScore,
	}

	candidateJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	prompt := buildPrompt(string(candidateJSON))

	d.logger.Debug("gemini generate content request",
		zap.Int64("candidate_id", rec.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, d.maxLogLen)),
	)

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	d.logger.Debug("gemini generate content response",
		zap.Int64("candidate_id", rec.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, d.maxLogLen)),
	)

	note := cleanNote(raw)
	if note == "" {
		return "", fmt.Errorf("gemini returned an empty note")
	}
	return note, nil
}

func buildPrompt(candidateJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate:\n{{CANDIDATE_JSON}}\n\nNote:"
	}
	return strings.ReplaceAll(template, "{{CANDIDATE_JSON}}", candidateJSON)
}

func cleanNote(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`\"")
	return strings.TrimSpace(raw)
}
