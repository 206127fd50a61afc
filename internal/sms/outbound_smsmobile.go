package sms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// SMSMobileClient talks to the SMS Mobile API. Sends are serialized
// through one lock; the provider account is not assumed to tolerate
// interleaved calls.
type SMSMobileClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	sendMu  sync.Mutex
}

func NewSMSMobileClient() (*SMSMobileClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("SMS_MOBILE_API_KEY"))
	if apiKey == "" {
		return nil, ErrNoTransport
	}

	return &SMSMobileClient{
		baseURL: "https://api.smsmobileapi.com",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *SMSMobileClient) SendMessage(ctx context.Context, to, text string) (json.RawMessage, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	form := url.Values{}
	form.Set("apikey", c.apiKey)
	form.Set("recipients", to)
	form.Set("message", text)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/sendsms/",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

func (c *SMSMobileClient) GetReceivedMessages(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/getsms/?apikey="+url.QueryEscape(c.apiKey),
		nil,
	)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *SMSMobileClient) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, errors.New(
			"smsmobile api error: " +
				resp.Status +
				" body=" + string(body),
		)
	}

	return json.RawMessage(body), nil
}
