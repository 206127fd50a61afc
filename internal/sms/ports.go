package sms

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// InboundMessage is one SMS delivered by the provider, via webhook or a
// received-messages poll. Never mutated after construction.
type InboundMessage struct {
	GUID       string
	Sender     string
	Body       string
	ReceivedAt time.Time // zero when the provider timestamp was unparseable
}

// Reliever is a substitute worker on file in the contact directory.
type Reliever struct {
	ID      int64  `json:"id"`
	Name    string `json:"full_name"`
	Contact string `json:"contact"`
}

// Head is the supervisor contact that receives agreement notifications.
type Head struct {
	Name    string
	Contact string
}

var (
	// ErrNoTransport means no SMS provider credential is configured.
	ErrNoTransport = errors.New("sms: SMS_MOBILE_API_KEY not set")

	// ErrNoHeadContact means there is nowhere to route notifications,
	// which aborts a whole sweep.
	ErrNoHeadContact = errors.New("sms: no head admin contact configured")
)

// Transport is the SMS provider client. Both calls may be slow and may fail.
type Transport interface {
	SendMessage(ctx context.Context, to, text string) (json.RawMessage, error)
	GetReceivedMessages(ctx context.Context) (json.RawMessage, error)
}

// Directory is the read-only contact store.
type Directory interface {
	ListRelievers(ctx context.Context) ([]Reliever, error)
	GetHeadAdmin(ctx context.Context) (Head, error)
}
