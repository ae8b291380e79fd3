package ratesource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/224solutions/exchange/internal/entities"
)

// Client wraps the remote rate-source procedure endpoint. The endpoint is a
// single URL accepting an action-tagged JSON body.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type request struct {
	Action string  `json:"action"`
	From   string  `json:"from,omitempty"`
	To     string  `json:"to,omitempty"`
	Amount float64 `json:"amount,omitempty"`
}

type convertResponse struct {
	Rate            float64 `json:"rate"`
	ConvertedAmount float64 `json:"convertedAmount"`
}

// Refresh asks the remote side to pull fresh rates from its market-data
// provider. No payload is expected beyond success or failure.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.post(ctx, request{Action: "refresh"})
	return err
}

// Convert delegates a conversion to the remote side and returns the rate it
// reports.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (entities.ConversionResult, error) {
	body, err := c.post(ctx, request{Action: "convert", From: from, To: to, Amount: amount})
	if err != nil {
		return entities.ConversionResult{}, err
	}

	var resp convertResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return entities.ConversionResult{}, fmt.Errorf("json unmarshal error: %w", err)
	}

	return entities.ConversionResult{
		Amount:          amount,
		FromCurrency:    from,
		ToCurrency:      to,
		Rate:            resp.Rate,
		ConvertedAmount: resp.ConvertedAmount,
	}, nil
}

func (c *Client) post(ctx context.Context, payload request) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json marshal error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate source post error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body error: %w", err)
	}

	return body, nil
}
