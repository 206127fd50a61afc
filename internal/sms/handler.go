package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type Handler struct {
	processor *Processor
	sweeper   *Sweeper
	transport Transport
	directory Directory
}

func NewHandler(processor *Processor, sweeper *Sweeper, transport Transport, directory Directory) *Handler {
	return &Handler{
		processor: processor,
		sweeper:   sweeper,
		transport: transport,
		directory: directory,
	}
}

// WebhookHealth answers the provider's connectivity probe. Must not
// touch the pipeline.
func (h *Handler) WebhookHealth(w http.ResponseWriter, _ *http.Request) {
	log.Println("[webhook] health check received")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "Webhook endpoint is active and ready to receive SMS",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReceiveWebhook is the inbound SMS boundary. It normalizes the payload,
// spawns one background unit per message and acks immediately; it never
// waits for processing. Providers retry on anything but a fast 2xx.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		// Providers send connectivity pings with arbitrary bodies; an
		// undecodable payload is a zero-message success, not an error.
		log.Printf("[webhook] undecodable payload: %v", err)
		h.ackEmpty(w)
		return
	}

	messages := Normalize(payload)
	if len(messages) == 0 {
		log.Println("[webhook] received but no valid messages found")
		h.ackEmpty(w)
		return
	}

	for _, msg := range messages {
		go h.processor.Process(context.Background(), msg)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"message":       fmt.Sprintf("Received %d message(s), processing in background", len(messages)),
		"message_count": len(messages),
	})
}

func (h *Handler) ackEmpty(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "Webhook received but no messages to process",
		"processed": 0,
		"skipped":   0,
	})
}

type headContact struct {
	HeadName      string `json:"head_name"`
	ContactNumber string `json:"contact_number"`
}

type employee struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

type employeeList struct {
	Employees []employee `json:"employees"`
}

type notifyHeadsRequest struct {
	HeadList       []headContact  `json:"head_list"`
	Message        string         `json:"message"`
	EmployeesUnder []employeeList `json:"employees_under"`
}

type sendReceipt struct {
	Name     string          `json:"name"`
	Contact  string          `json:"contact"`
	Response json.RawMessage `json:"response,omitempty"`
}

type sendFailure struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Error   string `json:"error"`
}

type bulkSendResult struct {
	Success bool          `json:"success"`
	SentTo  []sendReceipt `json:"sent_to"`
	Failed  []sendFailure `json:"failed"`
	Message string        `json:"message"`
}

// NotifyHeads sends every head admin an SMS listing absent employees.
func (h *Handler) NotifyHeads(w http.ResponseWriter, r *http.Request) {
	if h.transport == nil {
		httpError(w, http.StatusServiceUnavailable, "SMS transport not configured. Set SMS_MOBILE_API_KEY.")
		return
	}

	var req notifyHeadsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var all []employee
	for _, list := range req.EmployeesUnder {
		all = append(all, list.Employees...)
	}
	if len(all) == 0 {
		httpError(w, http.StatusBadRequest, "Employee list cannot be empty.")
		return
	}
	if len(req.HeadList) == 0 {
		httpError(w, http.StatusBadRequest, "Head list cannot be empty.")
		return
	}

	var b strings.Builder
	b.WriteString(req.Message)
	b.WriteString("\n\nThe following employees are absent today:\n")
	for _, emp := range all {
		fmt.Fprintf(&b, "- %s (%s)\n", emp.Name, emp.Position)
	}
	text := b.String()

	sentTo := []sendReceipt{}
	failed := []sendFailure{}
	for _, head := range req.HeadList {
		log.Printf("[sms] notifying head %s about %d absent employees", head.HeadName, len(all))
		resp, err := h.transport.SendMessage(r.Context(), head.ContactNumber, text)
		if err != nil {
			log.Printf("[sms] failed to notify head %s: %v", head.HeadName, err)
			failed = append(failed, sendFailure{Name: head.HeadName, Error: err.Error()})
			continue
		}
		sentTo = append(sentTo, sendReceipt{Name: head.HeadName, Contact: head.ContactNumber, Response: resp})
	}

	writeJSON(w, http.StatusOK, bulkSendResult{
		Success: len(failed) == 0,
		SentTo:  sentTo,
		Failed:  failed,
		Message: fmt.Sprintf("Notifications sent to %d heads. Failed: %d", len(sentTo), len(failed)),
	})
}

type relieverRequest struct {
	Relievers []struct {
		Name    string `json:"name"`
		Contact string `json:"contact"`
		Message string `json:"message"`
	} `json:"relievers"`
}

// RequestRelievers sends each reliever their personalized availability
// request. Per-reliever failures do not stop the batch.
func (h *Handler) RequestRelievers(w http.ResponseWriter, r *http.Request) {
	if h.transport == nil {
		httpError(w, http.StatusServiceUnavailable, "SMS transport not configured. Set SMS_MOBILE_API_KEY.")
		return
	}

	var req relieverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Relievers) == 0 {
		httpError(w, http.StatusBadRequest, "Reliever list cannot be empty.")
		return
	}

	sentTo := []sendReceipt{}
	failed := []sendFailure{}
	for _, rel := range req.Relievers {
		log.Printf("[sms] sending message to reliever %s (%s)", rel.Name, rel.Contact)
		resp, err := h.transport.SendMessage(r.Context(), rel.Contact, rel.Message)
		if err != nil {
			log.Printf("[sms] failed to send to reliever %s: %v", rel.Name, err)
			failed = append(failed, sendFailure{Name: rel.Name, Contact: rel.Contact, Error: err.Error()})
			continue
		}
		sentTo = append(sentTo, sendReceipt{Name: rel.Name, Contact: rel.Contact, Response: resp})
	}

	writeJSON(w, http.StatusOK, bulkSendResult{
		Success: len(failed) == 0,
		SentTo:  sentTo,
		Failed:  failed,
		Message: fmt.Sprintf("Messages sent to %d relievers. Failed: %d", len(sentTo), len(failed)),
	})
}

// ListRelievers returns the minimal directory view (id, full_name, contact).
func (h *Handler) ListRelievers(w http.ResponseWriter, r *http.Request) {
	relievers, err := h.directory.ListRelievers(r.Context())
	if err != nil {
		log.Printf("[db] error fetching relievers: %v", err)
		httpError(w, http.StatusInternalServerError, "failed to fetch relievers")
		return
	}
	if len(relievers) == 0 {
		httpError(w, http.StatusNotFound, "No relievers found")
		return
	}

	writeJSON(w, http.StatusOK, relievers)
}

// AnalyzeReplies triggers one sweep and returns the full result.
func (h *Handler) AnalyzeReplies(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweeper.Run(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoTransport) || errors.Is(err, ErrNoHeadContact) {
			httpError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		log.Printf("[sweep] failed: %v", err)
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
