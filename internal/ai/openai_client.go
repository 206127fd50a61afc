package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const classifierSystem = "You are a classifier that determines if a reply message shows agreement. " +
	"Respond with exactly one of these words: Agree, Disagree, Neutral."

const classifierExamples = `Example 1:
Message: Let's meet at 6 PM.
Reply: Sure, that works for me.
Output: Agree

Example 2:
Message: We should cancel the trip.
Reply: No way, we're still going.
Output: Disagree

Example 3:
Message: Do you want to join the call?
Reply: Maybe, not sure yet.
Output: Neutral

`

type OpenAIClient struct {
	client      *openai.Client // nil when no API key is configured
	model       string
	temperature float32
	timeout     time.Duration
}

func NewOpenAIClient() *OpenAIClient {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	var temp float32
	if raw := os.Getenv("OPENAI_TEMPERATURE"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 32); err == nil {
			temp = float32(f)
		}
	}

	c := &OpenAIClient{
		model:       model,
		temperature: temp,
		timeout:     15 * time.Second,
	}
	if apiKey != "" {
		c.client = openai.NewClient(apiKey)
	}
	return c
}

// ClassifyText asks the model for one of the three labels. Returns
// ErrNotConfigured when no API key is present; any other error (network,
// timeout, unrecognized response) is for the caller's fallback branch.
func (c *OpenAIClient) ClassifyText(ctx context.Context, text string) (Label, error) {
	if c.client == nil {
		return Neutral, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user := "Given the reply message:\n\n" + strconv.Quote(text) +
		"\n\nReturn one word: Agree, Disagree, or Neutral."

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystem},
			{Role: openai.ChatMessageRoleUser, Content: classifierExamples + user},
		},
	})
	if err != nil {
		log.Println("[ai] OpenAI error:", err)
		return Neutral, err
	}
	if len(resp.Choices) == 0 {
		return Neutral, errors.New("ai: empty choices in response")
	}

	return ParseLabel(resp.Choices[0].Message.Content)
}

// ParseLabel maps the first token of a model response onto a Label.
// An unrecognized token is an error, not Neutral, so that malformed
// responses hit the fallback instead of silently passing.
func ParseLabel(raw string) (Label, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return Neutral, errors.New("ai: empty response")
	}

	switch strings.ToLower(strings.Trim(fields[0], ".,!:\"'")) {
	case "agree":
		return Agree, nil
	case "disagree":
		return Disagree, nil
	case "neutral":
		return Neutral, nil
	}
	return Neutral, fmt.Errorf("ai: unrecognized label %q", fields[0])
}
