package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/recruit-tracker/internal/candidate"
)

// Drafter writes the outreach note that accompanies a send-engagement action.
// Drafts are only returned to the operator; nothing is delivered.
type Drafter interface {
	Draft(ctx context.Context, rec candidate.Record) (string, error)
}

// TemplateDrafter produces a fixed note and is used when AI drafting is off or fails.
type TemplateDrafter struct{}

func (TemplateDrafter) Draft(_ context.Context, rec candidate.Record) (string, error) {
	first := strings.Fields(rec.Name)
	name := rec.Name
	if len(first) > 0 {
		name = first[0]
	}

	position := rec.Position
	if position == "" || position == candidate.DefaultPosition {
		return fmt.Sprintf("Hi %s, thanks again for applying. Do you have a few minutes this week to talk about next steps?", name), nil
	}

	return fmt.Sprintf("Hi %s, thanks again for applying for the %s role. Do you have a few minutes this week to talk about next steps?", name, position), nil
}
