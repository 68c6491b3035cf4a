package nessie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dan9191/bankshot/internal/config"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrEmptyAnswer is returned when the inference endpoint answers with no text
var ErrEmptyAnswer = errors.New("empty answer")

// Client handles integration with the account data backend
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new backend client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBase, "/"),
		apiKey:  cfg.NessieAPIKey,
		client: &http.Client{
			Timeout: cfg.RemoteTimeout,
		},
		log: log,
	}
}

// FetchAccounts retrieves the accounts of a customer
func (c *Client) FetchAccounts(ctx context.Context, customerID string) ([]models.Account, error) {
	var accounts []models.Account
	path := fmt.Sprintf("/customers/%s/accounts", url.PathEscape(customerID))
	if err := c.do(ctx, http.MethodGet, path, nil, &accounts); err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	c.log.Debugf("Fetched %d accounts for customer %s", len(accounts), customerID)
	return accounts, nil
}

// FetchTransactions retrieves the transactions across a customer's accounts
func (c *Client) FetchTransactions(ctx context.Context, customerID string) ([]models.RawTransaction, error) {
	var txs []models.RawTransaction
	path := fmt.Sprintf("/customers/%s/accounts/transactions", url.PathEscape(customerID))
	if err := c.do(ctx, http.MethodGet, path, nil, &txs); err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	c.log.Debugf("Fetched %d transactions for customer %s", len(txs), customerID)
	return txs, nil
}

// UpdateGoal stores a new savings goal
func (c *Client) UpdateGoal(ctx context.Context, goal float64) error {
	body := map[string]float64{"goal": goal}
	if err := c.do(ctx, http.MethodPost, "/goal", body, nil); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

type simulationResponse struct {
	Outcome   string  `json:"outcome"`
	Stock     string  `json:"stock"`
	Stake     float64 `json:"stake"`
	Final     float64 `json:"final"`
	GainLoss  float64 `json:"gainLoss"`
	PctChange float64 `json:"pctChange"`
	Insight   string  `json:"insight"`
	Period    string  `json:"period"`
}

// RunSimulation asks the backend to simulate investing stake
func (c *Client) RunSimulation(ctx context.Context, stake float64) (*models.SimulationResult, error) {
	var resp simulationResponse
	body := map[string]float64{"stake": stake}
	if err := c.do(ctx, http.MethodPost, "/simulate", body, &resp); err != nil {
		return nil, fmt.Errorf("run simulation: %w", err)
	}
	return &models.SimulationResult{
		Asset:         resp.Stock,
		Stake:         resp.Stake,
		FinalValue:    resp.Final,
		GainLoss:      resp.GainLoss,
		PercentChange: resp.PctChange,
		Outcome:       models.Outcome(resp.Outcome),
		Narrative:     resp.Insight,
		Period:        resp.Period,
	}, nil
}

// Ask forwards a question to the backend's inference endpoint. The snapshot
// is not sent; the backend keeps its own view of the customer.
func (c *Client) Ask(ctx context.Context, question string, _ *models.FinancialSnapshot) (string, error) {
	var resp struct {
		Answer string `json:"answer"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/ask", map[string]string{"question": question}, &resp); err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	if strings.TrimSpace(resp.Answer) == "" {
		return "", ErrEmptyAnswer
	}
	return resp.Answer, nil
}

// do sends a JSON request and decodes the JSON response into out
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	endpoint := c.baseURL + path
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("%s %s -> %d in %s: %s", method, path, resp.StatusCode, time.Since(start), string(raw))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
