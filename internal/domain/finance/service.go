package finance

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/rpggio/nestly/internal/store"
)

// Collection is the store collection holding transactions.
const Collection = "transactions"

// recentLimit caps Summary.Recent.
const recentLimit = 10

// Service computes the admin financial summary.
type Service struct {
	client store.Client
	logger *slog.Logger
}

// NewService creates a new finance service.
func NewService(client store.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger}
}

// Summary aggregates transactions created at or after since. A zero since
// covers all transactions.
func (s *Service) Summary(ctx context.Context, since time.Time) (*Summary, error) {
	q := store.From(Collection).OrderBy("created_at", true)
	if !since.IsZero() {
		q = q.Filter(store.Gte("created_at", since.UTC()))
	}
	res, err := s.client.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	txns := make([]Transaction, 0, len(res.Rows))
	for _, row := range res.Rows {
		txns = append(txns, fromRow(row))
	}
	return summarize(txns), nil
}

// summarize expects txns newest first.
func summarize(txns []Transaction) *Summary {
	sum := &Summary{
		ByKind:           map[Kind]float64{},
		TransactionCount: len(txns),
		Monthly:          []MonthlyTotal{},
		Recent:           []Transaction{},
	}
	monthly := map[string]float64{}

	for _, t := range txns {
		switch t.Status {
		case StatusPending:
			sum.PendingAmount += t.Amount
			continue
		case StatusFailed:
			sum.FailedCount++
			continue
		}

		net := t.Amount
		if t.Kind == KindRefund {
			sum.Refunds += t.Amount
			net = -t.Amount
		} else {
			sum.ByKind[t.Kind] += t.Amount
		}
		sum.TotalRevenue += net
		monthly[t.CreatedAt.UTC().Format("2006-01")] += net
	}

	for month, revenue := range monthly {
		sum.Monthly = append(sum.Monthly, MonthlyTotal{Month: month, Revenue: revenue})
	}
	sort.Slice(sum.Monthly, func(i, j int) bool { return sum.Monthly[i].Month < sum.Monthly[j].Month })

	if len(txns) > recentLimit {
		txns = txns[:recentLimit]
	}
	sum.Recent = append(sum.Recent, txns...)
	return sum
}

func fromRow(r store.Row) Transaction {
	return Transaction{
		ID:         r.String("id"),
		UserID:     r.String("user_id"),
		PropertyID: r.String("property_id"),
		Amount:     r.Float("amount"),
		Kind:       Kind(r.String("kind")),
		Status:     TransactionStatus(r.String("status")),
		CreatedAt:  r.Time("created_at"),
	}
}
