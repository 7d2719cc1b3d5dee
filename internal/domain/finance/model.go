package finance

import "time"

// Kind classifies a transaction.
type Kind string

const (
	KindSale       Kind = "sale"
	KindRent       Kind = "rent"
	KindCommission Kind = "commission"
	KindFee        Kind = "fee"
	KindRefund     Kind = "refund"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is a money movement on the marketplace.
type Transaction struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id,omitempty"`
	PropertyID string            `json:"property_id,omitempty"`
	Amount     float64           `json:"amount"`
	Kind       Kind              `json:"kind"`
	Status     TransactionStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

// MonthlyTotal is the net revenue settled in one calendar month (UTC).
type MonthlyTotal struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// Summary is the admin dashboard's view of marketplace finances.
type Summary struct {
	TotalRevenue     float64          `json:"total_revenue"`
	ByKind           map[Kind]float64 `json:"by_kind"`
	Refunds          float64          `json:"refunds"`
	PendingAmount    float64          `json:"pending_amount"`
	FailedCount      int              `json:"failed_count"`
	TransactionCount int              `json:"transaction_count"`
	Monthly          []MonthlyTotal   `json:"monthly"`
	Recent           []Transaction    `json:"recent"`
}
