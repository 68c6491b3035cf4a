// Package claude answers dashboard questions through the Anthropic Messages API.
package claude

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dgraph-io/ristretto"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bankshot/internal/analytics"
	"github.com/Dan9191/bankshot/internal/config"
	"github.com/Dan9191/bankshot/internal/models"
)

// ErrEmptyAnswer is returned when the model produced no text.
var ErrEmptyAnswer = errors.New("model returned no text")

const (
	maxTokens = 512
	cacheTTL  = 10 * time.Minute
)

// Advisor is a remote inference client with a short-lived answer cache.
type Advisor struct {
	client anthropic.Client
	model  string
	cache  *ristretto.Cache
	log    *logrus.Logger
}

// NewAdvisor creates an advisor for cfg.AnthropicModel. Requests are never
// retried: a failure falls straight through to the local responder.
func NewAdvisor(cfg *config.Config, log *logrus.Logger, opts ...option.RequestOption) (*Advisor, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create answer cache: %w", err)
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.RemoteTimeout),
	}
	return &Advisor{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  cfg.AnthropicModel,
		cache:  cache,
		log:    log,
	}, nil
}

// Ask answers question with the snapshot as context.
func (a *Advisor) Ask(ctx context.Context, question string, snap *models.FinancialSnapshot) (string, error) {
	summary := Summarize(snap)
	key := cacheKey(question, summary)
	if v, ok := a.cache.Get(key); ok {
		a.log.Debugf("Answer cache hit for %q", question)
		return v.(string), nil
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt + "\n\n" + summary},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", ErrEmptyAnswer
	}

	a.cache.SetWithTTL(key, answer, int64(len(answer)), cacheTTL)
	a.cache.Wait()
	return answer, nil
}

// Close releases the answer cache.
func (a *Advisor) Close() {
	a.cache.Close()
}

const systemPrompt = "You are Coach, an upbeat personal finance assistant who explains money habits with basketball metaphors. " +
	"Answer in at most three sentences, using only the figures below. Do not invent numbers."

// Summarize renders the figures the model may cite.
func Summarize(snap *models.FinancialSnapshot) string {
	if snap == nil || len(snap.BalanceHistory) < 2 {
		return "No financial data is available yet."
	}
	view := analytics.Derive(snap)
	shares := analytics.SharesOf(snap.Spending)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current balance: %d (change since last period: %+d).\n", view.CurrentBalance, view.BalanceDelta)
	fmt.Fprintf(&sb, "Balance trend over %d periods: %s. Best period: %s at %d.\n",
		len(snap.BalanceHistory), view.TrendDirection, view.BestMonth.Period, view.BestMonth.Balance)
	fmt.Fprintf(&sb, "Spending split: needs %.0f%%, wants %.0f%%, savings %.0f%% (savings amount %d).\n",
		shares.Needs, shares.Wants, shares.Savings, snap.Spending.Savings)
	fmt.Fprintf(&sb, "Savings goal: %.2f, progress %.0f%%.\n", snap.Goal, view.GoalProgressPercent)
	if c := snap.Credit; c != nil {
		fmt.Fprintf(&sb, "Credit: %d used of %d (%d%% utilization).\n", c.Used, c.Limit, c.UtilizationPercent)
	}
	return sb.String()
}

func cacheKey(question, summary string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(question)))
	h.Write([]byte{0})
	h.Write([]byte(summary))
	return hex.EncodeToString(h.Sum(nil))
}
