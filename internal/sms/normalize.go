package sms

import (
	"encoding/json"
	"strings"
	"time"
)

// WebhookPayload is the wire envelope from the provider. Two shapes:
// a single message at the top level, or a batch under "messages".
type WebhookPayload struct {
	Date         string        `json:"date"`
	Hour         string        `json:"hour"`
	TimeReceived string        `json:"time_received"`
	Message      string        `json:"message"`
	Number       string        `json:"number"`
	GUID         string        `json:"guid"`
	Messages     []WebhookItem `json:"messages"`
}

// WebhookItem is one entry of the batch shape.
type WebhookItem struct {
	Date         string `json:"date"`
	Hour         string `json:"hour"`
	TimeReceived string `json:"time_received"`
	Message      string `json:"message"`
	Number       string `json:"number"`
	GUID         string `json:"guid"`
}

// Normalize flattens a webhook payload into messages. A non-empty batch
// takes precedence; the single shape is used only when message, number
// and guid are all present. Anything else yields nothing.
func Normalize(p WebhookPayload) []InboundMessage {
	if len(p.Messages) > 0 {
		out := make([]InboundMessage, 0, len(p.Messages))
		for _, item := range p.Messages {
			out = append(out, itemToMessage(item))
		}
		return out
	}

	if p.Message != "" && p.Number != "" && p.GUID != "" {
		return []InboundMessage{itemToMessage(WebhookItem{
			Date:         p.Date,
			Hour:         p.Hour,
			TimeReceived: p.TimeReceived,
			Message:      p.Message,
			Number:       p.Number,
			GUID:         p.GUID,
		})}
	}

	return nil
}

func itemToMessage(item WebhookItem) InboundMessage {
	msg := InboundMessage{
		GUID:   item.GUID,
		Sender: item.Number,
		Body:   item.Message,
	}
	if ts, ok := ParseTimestamp(item.TimeReceived); ok {
		msg.ReceivedAt = ts
	} else if ts, ok := ParseTimestamp(item.Date + " " + item.Hour); ok {
		msg.ReceivedAt = ts
	}
	return msg
}

// NormalizeDump flattens a received-messages dump. The provider returns
// either a bare list of message objects or {"result": {"sms": [...]}};
// any other shape normalizes to nothing.
func NormalizeDump(raw json.RawMessage) []map[string]any {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var wrapped struct {
		Result struct {
			SMS []map[string]any `json:"sms"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Result.SMS
	}

	return nil
}

// SenderOf picks the sender of a raw record: number, from, sender —
// first non-empty wins.
func SenderOf(rec map[string]any) string {
	for _, key := range []string{"number", "from", "sender"} {
		if v, ok := rec[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// TimestampOf finds and parses the timestamp of a raw record. The first
// non-empty candidate field decides; if it fails to parse, the record
// has no usable timestamp.
func TimestampOf(rec map[string]any) (time.Time, bool) {
	for _, key := range []string{"date", "timestamp", "received_at", "sent_at", "time"} {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return ParseTimestamp(v)
	}
	return time.Time{}, false
}

// isoLayouts cover the provider's string timestamp encodings. Layouts
// without an offset are read as UTC.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts numeric epoch values (seconds, or milliseconds
// when greater than 1e12) and ISO-8601 strings with or without a zone.
// A trailing Z means UTC; no zone at all is assumed UTC.
func ParseTimestamp(v any) (time.Time, bool) {
	switch ts := v.(type) {
	case float64:
		return fromEpoch(ts), true
	case int:
		return fromEpoch(float64(ts)), true
	case int64:
		return fromEpoch(float64(ts)), true
	case json.Number:
		if f, err := ts.Float64(); err == nil {
			return fromEpoch(f), true
		}
		return time.Time{}, false
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}

func fromEpoch(ts float64) time.Time {
	if ts > 1e12 { // milliseconds
		return time.UnixMilli(int64(ts)).UTC()
	}
	return time.Unix(int64(ts), 0).UTC()
}

// NormalizePhone strips the leading "+" and spaces so "+63…" and "63…"
// forms of the same number compare equal.
func NormalizePhone(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), "+", "")
}
