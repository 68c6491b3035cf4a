package models

import "time"

// TransactionKind is the direction of money movement
type TransactionKind string

const (
	Deposit    TransactionKind = "Deposit"
	Withdrawal TransactionKind = "Withdrawal"
)

// Transaction represents a financial transaction shown in a snapshot
type Transaction struct {
	ID         string          `json:"id"`
	Merchant   string          `json:"merchant"`
	Amount     float64         `json:"amount"`
	Kind       TransactionKind `json:"type"`
	Category   string          `json:"category"`
	OccurredOn time.Time       `json:"date"`
}

// RawTransaction is a transaction record from the external source. Sources
// disagree on field names, so every known spelling is captured and the
// merger picks whichever is populated.
type RawTransaction struct {
	MongoID         string   `json:"_id"`
	ID              string   `json:"id"`
	MerchantName    string   `json:"merchant_name"`
	Merchant        string   `json:"merchant"`
	Description     string   `json:"description"`
	Amount          *float64 `json:"amount"`
	Type            string   `json:"type"`
	Category        string   `json:"category"`
	Date            string   `json:"date"`
	TransactionDate string   `json:"transaction_date"`
}
