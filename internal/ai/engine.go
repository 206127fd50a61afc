package ai

import (
	"context"
	"errors"
	"log"
)

// Method records which classification path produced a label.
type Method string

const (
	MethodOpenAI           Method = "OpenAI"
	MethodRule             Method = "Rule-based"
	MethodRuleAfterFailure Method = "Rule-based (after failure)"
)

// Engine is the AI-first, rule-fallback classifier.
type Engine struct {
	backend Backend
}

func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// Classify tries the backend and degrades to RuleClassify when the
// backend is unconfigured or fails. It always produces a label.
func (e *Engine) Classify(ctx context.Context, text string) (Label, Method) {
	if e.backend == nil {
		return RuleClassify(text), MethodRule
	}

	label, err := e.backend.ClassifyText(ctx, text)
	if err == nil {
		return label, MethodOpenAI
	}
	if errors.Is(err, ErrNotConfigured) {
		return RuleClassify(text), MethodRule
	}

	log.Printf("[ai] classification failed, using fallback: %v", err)
	return RuleClassify(text), MethodRuleAfterFailure
}

// ClassifyBatch labels every record in input order. Each output record
// carries all input fields plus a "classification" key. Text is read
// from message/text/body, first non-empty wins.
func (e *Engine) ClassifyBatch(ctx context.Context, records []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		label, _ := e.Classify(ctx, TextField(rec))

		clone := make(map[string]any, len(rec)+1)
		for k, v := range rec {
			clone[k] = v
		}
		clone["classification"] = string(label)
		out = append(out, clone)
	}
	return out
}

// TextField extracts the message text of a raw provider record.
func TextField(rec map[string]any) string {
	for _, key := range []string{"message", "text", "body"} {
		if v, ok := rec[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
