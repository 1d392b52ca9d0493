// Package helius edits the single managed webhook subscription on the
// upstream event provider.
package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// Client manages one webhook subscription. Edits replace the full address
// list, so the caller always passes the complete desired set.
type Client struct {
	baseURL     string
	apiKey      string
	webhookID   string
	callbackURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL     string
	APIKey      string
	WebhookID   string
	CallbackURL string
	Timeout     time.Duration
	Logger      *slog.Logger
}

func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     opts.BaseURL,
		apiKey:      opts.APIKey,
		webhookID:   opts.WebhookID,
		callbackURL: opts.CallbackURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      opts.Logger.With("component", "helius_client"),
	}
}

// editRequest is the upstream edit payload. The provider treats an edit as a
// full replacement of the subscription.
type editRequest struct {
	WebhookURL       string   `json:"webhookURL"`
	TransactionTypes []string `json:"transactionTypes"`
	AccountAddresses []string `json:"accountAddresses"`
	WebhookType      string   `json:"webhookType"`
	TxnStatus        string   `json:"txnStatus"`
}

// ReplaceAddresses edits the subscription so it watches exactly the given
// addresses. Duplicates are collapsed and the list is sorted so identical
// sets produce identical requests.
func (c *Client) ReplaceAddresses(ctx context.Context, addresses []string) error {
	deduped := dedupeSorted(addresses)

	body, err := json.Marshal(editRequest{
		WebhookURL:       c.callbackURL,
		TransactionTypes: []string{"ANY"},
		AccountAddresses: deduped,
		WebhookType:      "enhanced",
		TxnStatus:        "all",
	})
	if err != nil {
		return fmt.Errorf("marshal edit request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v0/webhooks/%s?api-key=%s",
		c.baseURL, url.PathEscape(c.webhookID), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build edit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("edit subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("edit subscription: upstream returned %d: %s",
			resp.StatusCode, string(snippet))
	}

	c.logger.InfoContext(ctx, "subscription updated", "addresses", len(deduped))
	return nil
}

func dedupeSorted(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
