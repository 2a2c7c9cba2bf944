// Package intent parses chat messages into banking intents by calling an
// OpenAI-compatible chat completions endpoint.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bellybank/backend/pkg/config"
	"github.com/bellybank/backend/pkg/currency"
	"github.com/bellybank/backend/pkg/domain/money"
	"github.com/bellybank/backend/pkg/phone"
	"github.com/bellybank/backend/pkg/service/assistant"
	"github.com/shopspring/decimal"
)

const systemPrompt = `You are the voice assistant of BellyBank.
%s
Your task: determine the user's intent from their message.

TRANSFER RULES:
1. If the user wants a TRANSFER and gave an AMOUNT and a NUMBER (phone or card), return JSON:
   {"action": "transfer", "amount": 500, "phone": "8747...", "reply": "Transferring 500 tenge..."}
   - Normalize the phone to 11 digits starting with 8 (e.g. 87471234567).
   - Strip spaces and punctuation from the number.
2. If the amount or number is missing, do NOT invent them. Return JSON:
   {"action": null, "reply": "Please specify the amount and the phone number."}
3. For ordinary questions return JSON:
   {"action": null, "reply": "Your answer..."}

Always return valid JSON only.`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type parsedIntent struct {
	Action string          `json:"action"`
	Amount decimal.Decimal `json:"amount"`
	Phone  string          `json:"phone"`
	Reply  string          `json:"reply"`
}

// Provider implements assistant.Parser over an OpenAI-compatible API.
type Provider struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates an intent provider from config.
func New(cfg config.Assistant, logger *slog.Logger) *Provider {
	return &Provider{
		apiKey:     cfg.ApiKey,
		apiURL:     cfg.ApiUrl,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger,
	}
}

// Parse posts the message with the finance context and decodes the model's
// JSON answer into an intent.
func (p *Provider) Parse(ctx context.Context, message, finContext string) (*assistant.Intent, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPrompt, finContext)},
			{Role: "user", Content: message},
		},
		Temperature:    0,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("API returned no choices")
	}

	var parsed parsedIntent
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode intent: %w", err)
	}

	intent := &assistant.Intent{Reply: parsed.Reply, Action: parsed.Action}
	if parsed.Action == assistant.ActionTransfer {
		amount, err := money.New(parsed.Amount, currency.DefaultCurrency)
		if err != nil {
			return nil, fmt.Errorf("invalid intent amount: %w", err)
		}
		intent.Amount = amount
		// the model is told to normalize, but don't trust it
		intent.Phone = phone.Normalize(parsed.Phone)
	}
	p.logger.Debug("intent parsed", "action", parsed.Action)
	return intent, nil
}

var _ assistant.Parser = (*Provider)(nil)
