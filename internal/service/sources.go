package service

//go:generate mockgen -source=sources.go -destination=sources_mock.go -package=service

import (
	"context"
	"time"

	"github.com/Dan9191/bankshot/internal/models"
)

// Backend is the external account and simulation service
type Backend interface {
	FetchAccounts(ctx context.Context, customerID string) ([]models.Account, error)
	FetchTransactions(ctx context.Context, customerID string) ([]models.RawTransaction, error)
	UpdateGoal(ctx context.Context, goal float64) error
	RunSimulation(ctx context.Context, stake float64) (*models.SimulationResult, error)
}

// Advisor answers free-text questions remotely
type Advisor interface {
	Ask(ctx context.Context, question string, snap *models.FinancialSnapshot) (string, error)
}

// Mailer delivers account emails
type Mailer interface {
	SendPasswordReset(to, username, token string, expiry time.Time) error
	SendDigest(to, username string, view models.DerivedView, advice string) error
}
