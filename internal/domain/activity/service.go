package activity

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rpggio/nestly/internal/retry"
	"github.com/rpggio/nestly/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	perSourceLimit = 10
	feedLimit      = 20
)

var sourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nestly_activity_source_failures_total",
	Help: "Activity sources omitted from a feed because their query failed.",
}, []string{"source"})

// Service builds activity feeds from the user's favorites, saved searches,
// inquiries and viewings.
type Service struct {
	client store.Client
	logger *slog.Logger
	clock  retry.Clock
}

// NewService creates a new activity service.
func NewService(client store.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger, clock: retry.RealClock{}}
}

// WithClock sets the clock relative times are computed against.
func (s *Service) WithClock(c retry.Clock) *Service {
	s.clock = c
	return s
}

// Feed returns the user's most recent activity, newest first. A source
// whose query fails is left out; Feed itself fails only when ctx is done.
func (s *Service) Feed(ctx context.Context, userID string) ([]Activity, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	results := make([][]Activity, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			res, err := s.client.Query(ctx, src.query(userID))
			if err != nil {
				sourceFailures.WithLabelValues(src.name).Inc()
				s.logger.Warn("activity source failed", "source", src.name, "user_id", userID, "error", err)
				return nil
			}
			items := make([]Activity, 0, len(res.Rows))
			for _, row := range res.Rows {
				a := src.render(row)
				a.OccurredAt = row.Time("created_at")
				items = append(items, a)
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var feed []Activity
	for _, items := range results {
		feed = append(feed, items...)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].OccurredAt.After(feed[j].OccurredAt)
	})
	if len(feed) > feedLimit {
		feed = feed[:feedLimit]
	}

	now := s.clock.Now()
	for i := range feed {
		feed[i].Time = humanize.RelTime(feed[i].OccurredAt, now, "ago", "from now")
	}
	if feed == nil {
		feed = []Activity{}
	}
	return feed, nil
}
