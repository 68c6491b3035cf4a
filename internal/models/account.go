package models

// Account is an account record as returned by the external account source.
type Account struct {
	ID         string  `json:"_id"`
	Type       string  `json:"type"`
	Nickname   string  `json:"nickname"`
	Balance    float64 `json:"balance"`
	Rewards    int64   `json:"rewards"`
	CustomerID string  `json:"customer_id"`
}
