package ai

import (
	"context"
	"errors"
)

// Label is the ternary classification outcome for a reply message.
type Label string

const (
	Agree    Label = "Agree"
	Disagree Label = "Disagree"
	Neutral  Label = "Neutral"
)

// Agrees collapses the ternary label to the single yes/no decision used
// at notification boundaries. Only Agree is true; Neutral never notifies.
func (l Label) Agrees() bool { return l == Agree }

// ErrNotConfigured means no backend credential is present. Callers catch
// this condition specifically and route to the rule-based fallback.
var ErrNotConfigured = errors.New("ai: OPENAI_API_KEY not set")

// Backend is the remote classification model. Knows nothing about SMS.
type Backend interface {
	ClassifyText(ctx context.Context, text string) (Label, error)
}
