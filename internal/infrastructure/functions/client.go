// Package functions calls the serverless functions that proxy the video,
// payment and AI chat providers. Each call is a single JSON POST with no retry.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mediconnect/config"
	domainRepo "mediconnect/internal/domain/repository"

	"github.com/shopspring/decimal"
)

var ErrFunctionFailed = errors.New("serverless function call failed")

const (
	pathCreateRoom    = "/create-video-room"
	pathMeetingToken  = "/get-meeting-token"
	pathPaymentIntent = "/create-payment-intent"
	pathChat          = "/ai-chat"

	maxErrorBody = 4 << 10
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var (
	_ domainRepo.VideoProvider   = (*Client)(nil)
	_ domainRepo.PaymentProvider = (*Client)(nil)
	_ domainRepo.ChatProvider    = (*Client)(nil)
)

func NewClient(cfg config.FunctionsConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) CreateRoom(ctx context.Context, name string) (*domainRepo.VideoRoom, error) {
	var room domainRepo.VideoRoom
	if err := c.post(ctx, pathCreateRoom, map[string]string{"name": name}, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) CreateMeetingToken(ctx context.Context, roomName, userName string, isOwner bool) (string, error) {
	req := map[string]interface{}{
		"room_name": roomName,
		"user_name": userName,
		"is_owner":  isOwner,
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, pathMeetingToken, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// CreatePaymentIntent sends the amount in minor currency units.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*domainRepo.PaymentIntent, error) {
	req := map[string]interface{}{
		"amount":   amount.Shift(2).Round(0).IntPart(),
		"currency": currency,
		"metadata": metadata,
	}
	var intent domainRepo.PaymentIntent
	if err := c.post(ctx, pathPaymentIntent, req, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) Complete(ctx context.Context, messages []domainRepo.ChatMessage) (string, error) {
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.post(ctx, pathChat, map[string]interface{}{"messages": messages}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFunctionFailed, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s returned %d: %s", ErrFunctionFailed, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrFunctionFailed, path, err)
	}
	return nil
}
