package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/Dan9191/bankshot/internal/models"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	token, err := IssueSessionToken("s3cret", "u1", "sess-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestSessionToken_Rejected(t *testing.T) {
	token, err := IssueSessionToken("s3cret", "u1", "sess-1", time.Hour)
	require.NoError(t, err)
	_, err = ParseSessionToken("other", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := IssueSessionToken("s3cret", "u1", "sess-1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseSessionToken("s3cret", expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = ParseSessionToken("s3cret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetToken(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := GenerateResetToken("u1", "k", now.Add(time.Hour))
	require.NoError(t, err)

	userID, err := VerifyResetToken(token, "k", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = VerifyResetToken(token, "k", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = VerifyResetToken(token, "wrong", now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyResetToken("no-dot", "k", now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWriteStatement(t *testing.T) {
	snap := &models.FinancialSnapshot{
		BalanceHistory: []models.BalancePoint{{Period: "May", Balance: 1800}, {Period: "Jun", Balance: 2000}},
		Transactions: []models.Transaction{{
			ID: "t1", Merchant: "Target & Co", Amount: 42.5, Kind: models.Withdrawal,
			Category: "Shopping", OccurredOn: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		}},
		Spending:         models.SpendingBreakdown{Needs: 500, Wants: 300, Savings: 200},
		Goal:             500,
		Credit:           &models.CreditState{Limit: 5000, Used: 1000, Available: 4000, UtilizationPercent: 20},
		AdvisoryText:     "Keep going",
		SourceCustomerID: "c1",
		Mode:             models.ModeMerged,
	}
	view := models.DerivedView{CurrentBalance: 2000, BalanceDelta: 200, GoalProgressPercent: 40,
		BestMonth: models.BalancePoint{Period: "Jun", Balance: 2000}, TrendDirection: models.Upward}

	var buf bytes.Buffer
	require.NoError(t, WriteStatement(&buf, snap, view, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	root := doc.SelectElement("Statement")
	require.NotNil(t, root)
	assert.Equal(t, "c1", root.SelectAttrValue("customer", ""))
	assert.Equal(t, "2000", doc.FindElement("//Summary/CurrentBalance").Text())
	assert.Equal(t, "40.0", doc.FindElement("//Summary/Goal").SelectAttrValue("progress", ""))
	assert.Len(t, doc.FindElements("//BalanceHistory/Period"), 2)
	assert.Equal(t, "Target & Co", doc.FindElement("//Transaction/Merchant").Text())
	assert.Equal(t, "42.50", doc.FindElement("//Transaction/Amount").Text())
	assert.Equal(t, "4000", doc.FindElement("//Credit/Available").Text())

	assert.Error(t, WriteStatement(&buf, nil, view, time.Now()))
}
