package sms

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/relieverhq/sms-bridge/internal/ai"
)

// Processor runs the background unit of work for one inbound message:
// dedup gate, receipt log, classification, optional auto-reply,
// completion log. One Processor is shared by all units.
type Processor struct {
	engine    *ai.Engine
	transport Transport
	dedup     *DedupCache

	autoReply     bool
	autoReplyText string
}

func NewProcessor(engine *ai.Engine, transport Transport, dedup *DedupCache) *Processor {
	enabled := strings.ToLower(os.Getenv("SMS_AUTO_REPLY_ENABLED"))
	return &Processor{
		engine:        engine,
		transport:     transport,
		dedup:         dedup,
		autoReply:     enabled == "1" || enabled == "true" || enabled == "yes",
		autoReplyText: os.Getenv("SMS_AUTO_REPLY_TEXT"),
	}
}

// Process never returns an error: every failure is logged and contained
// so sibling units and the server keep running.
func (p *Processor) Process(ctx context.Context, msg InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[sms] PROCESSING FAILED | guid=%s from=%s err=%v", msg.GUID, msg.Sender, r)
		}
	}()

	if !p.dedup.MarkProcessed(msg.GUID) {
		log.Printf("[sms] DUPLICATE IGNORED | guid=%s from=%s", msg.GUID, msg.Sender)
		return
	}

	from := displayNumber(msg.Sender)
	log.Printf("[sms] RECEIVED | from=%s guid=%s text=%q", from, msg.GUID, strings.TrimSpace(msg.Body))

	label, method := p.engine.Classify(ctx, msg.Body)

	result := "NOT AGREE"
	if label.Agrees() {
		result = "AGREE"
	}
	log.Printf("[sms] CLASSIFIED %s | from=%s method=%s guid=%s", result, from, method, msg.GUID)

	p.maybeAutoReply(ctx, msg, label, from)

	log.Printf("[sms] PROCESSING COMPLETE | from=%s result=%s", from, result)
}

func (p *Processor) maybeAutoReply(ctx context.Context, msg InboundMessage, label ai.Label, from string) {
	if !p.autoReply {
		return
	}
	if p.transport == nil {
		log.Println("[sms] auto-reply enabled but transport not configured")
		return
	}

	reply := p.autoReplyText
	if reply == "" {
		if label.Agrees() {
			reply = "Thanks for confirming! See you soon."
		} else {
			reply = "Thank you for replying."
		}
	}

	if _, err := p.transport.SendMessage(ctx, msg.Sender, reply); err != nil {
		log.Printf("[sms] AUTO-REPLY FAILED | to=%s err=%v", from, err)
		return
	}
	log.Printf("[sms] AUTO-REPLY SENT | to=%s text=%q", from, reply)
}

// displayNumber renders +63 numbers in local 0-prefixed form for logs.
func displayNumber(n string) string {
	if strings.HasPrefix(n, "+63") {
		return "0" + strings.TrimPrefix(n, "+63")
	}
	return n
}
