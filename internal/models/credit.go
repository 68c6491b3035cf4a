package models

// CreditState describes a revolving credit line. Used + Available == Limit.
type CreditState struct {
	Limit              int64 `json:"limit"`
	Used               int64 `json:"used"`
	Available          int64 `json:"available"`
	UtilizationPercent int   `json:"utilization_percent"`
}
