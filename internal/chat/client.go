// Package chat proxies user questions to the Gemini API.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

// systemInstruction constrains the assistant to the app's health domain.
const systemInstruction = `You are a helpful assistant for women's health, specifically focusing on Menopause and similar situations.

Guidelines:
1. Give small and concise answers.
2. If the client describes severe symptoms or medical emergencies, strictly advise them to consult a doctor.
3. If the question is NOT related to women's Menopause or similar women's health situations, reply exactly with: "This is not a relevant question."
4. Be empathetic but professional.`

// Client calls the Gemini generateContent endpoint.
type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

// NewClient creates a Gemini client for the given model.
func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://generativelanguage.googleapis.com/v1beta")
	client.SetHeader("x-goog-api-key", apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

type generateContentRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// Respond sends the user's message and returns the model's reply.
func (c *Client) Respond(ctx context.Context, message string) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			reply, err := c.respond(ctx, message)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = reply
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
		retry.Delay(time.Second),
	); err != nil {
		return "", err
	}
	return result, nil
}

func (c *Client) respond(ctx context.Context, message string) (string, error) {
	req := generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents: []content{
			{Role: "user", Parts: []part{{Text: message}}},
		},
	}

	var out generateContentResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("response error %d: %s", resp.StatusCode(), resp.String())
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
