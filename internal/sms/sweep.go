package sms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relieverhq/sms-bridge/internal/ai"
)

// SweepResult is the outcome of one reply-classification run.
type SweepResult struct {
	ClassifiedCount    int                `json:"classified_count"`
	ClassifiedMessages []map[string]any   `json:"classified_messages"`
	Notified           []NotifiedReliever `json:"notified"`
}

type NotifiedReliever struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Sweeper pulls today's reliever replies from the provider, classifies
// the batch, and notifies the head admin about every agreement.
type Sweeper struct {
	engine    *ai.Engine
	transport Transport
	directory Directory
	now       func() time.Time
}

func NewSweeper(engine *ai.Engine, transport Transport, directory Directory) *Sweeper {
	return &Sweeper{
		engine:    engine,
		transport: transport,
		directory: directory,
		now:       time.Now,
	}
}

// Run performs one sweep. Per-reliever notification failures are logged
// and recorded as not-notified; only sweep-level failures (no transport,
// no head contact, provider/directory unavailable) return an error.
func (s *Sweeper) Run(ctx context.Context) (*SweepResult, error) {
	if s.transport == nil {
		return nil, ErrNoTransport
	}

	raw, err := s.transport.GetReceivedMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("sms: fetch received messages: %w", err)
	}

	relievers, err := s.directory.ListRelievers(ctx)
	if err != nil {
		return nil, fmt.Errorf("sms: list relievers: %w", err)
	}

	byPhone := make(map[string]Reliever, len(relievers))
	for _, r := range relievers {
		byPhone[NormalizePhone(r.Contact)] = r
	}

	// Day boundary pinned to UTC, matching how the provider timestamps
	// are normalized.
	todayStart := startOfDay(s.now().UTC())

	var todays []map[string]any
	for _, rec := range NormalizeDump(raw) {
		sender := SenderOf(rec)
		if sender == "" {
			continue
		}
		if _, known := byPhone[NormalizePhone(sender)]; !known {
			continue
		}
		ts, ok := TimestampOf(rec)
		if !ok {
			log.Printf("[sweep] message from %s has no usable timestamp, skipping", sender)
			continue
		}
		if ts.Before(todayStart) {
			continue
		}
		todays = append(todays, rec)
	}

	if len(todays) == 0 {
		return &SweepResult{
			ClassifiedMessages: []map[string]any{},
			Notified:           []NotifiedReliever{},
		}, nil
	}

	classified := s.engine.ClassifyBatch(ctx, todays)

	var agrees []map[string]any
	for _, rec := range classified {
		if rec["classification"] == string(ai.Agree) {
			agrees = append(agrees, rec)
		}
	}

	notified := []NotifiedReliever{}
	if len(agrees) > 0 {
		head, err := s.directory.GetHeadAdmin(ctx)
		if err != nil {
			// Nowhere to route notifications, so the whole sweep aborts.
			if errors.Is(err, ErrNoHeadContact) {
				return nil, err
			}
			return nil, fmt.Errorf("sms: resolve head admin: %w", err)
		}

		for _, rec := range agrees {
			reliever := byPhone[NormalizePhone(SenderOf(rec))]
			text := fmt.Sprintf("%s agreed to cover the shift. Reply: %q", reliever.Name, ai.TextField(rec))

			if _, err := s.transport.SendMessage(ctx, head.Contact, text); err != nil {
				log.Printf("[sweep] NOTIFY FAILED | reliever=%s err=%v", reliever.Name, err)
				continue
			}
			log.Printf("[sweep] NOTIFIED | head=%s reliever=%s", head.Name, reliever.Name)
			notified = append(notified, NotifiedReliever{Name: reliever.Name, Contact: reliever.Contact})
		}
	}

	return &SweepResult{
		ClassifiedCount:    len(classified),
		ClassifiedMessages: classified,
		Notified:           notified,
	}, nil
}

func startOfDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
