package connector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"otrs-connector/internal/observability"
	"otrs-connector/internal/otrs"
)

// TicketSource is the part of otrs.Client the connector needs.
type TicketSource interface {
	SearchTickets(ctx context.Context, filter otrs.SearchFilter) ([]string, error)
	GetTicket(ctx context.Context, ticketID string) (*otrs.Ticket, error)
}

// Connector runs polling cycles against one OTRS web service.
type Connector struct {
	source     TicketSource
	filter     otrs.SearchFilter
	maxTickets int
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func New(source TicketSource, filter otrs.SearchFilter, maxTickets int, metrics *observability.Metrics, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Connector{
		source:     source,
		filter:     filter,
		maxTickets: maxTickets,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// RunCycle searches for new and open tickets, fetches at most maxTickets of
// them and publishes ticket metrics. A failed search aborts the cycle; a
// failed fetch only skips that ticket.
func (c *Connector) RunCycle(ctx context.Context) ([]otrs.Ticket, error) {
	start := c.now()
	defer func() { c.metrics.ObservePoll(c.now().Sub(start)) }()

	c.logger.Info("starting polling cycle")
	ids, err := c.source.SearchTickets(ctx, c.filter)
	if err != nil {
		c.metrics.PollErrors.WithLabelValues(string(otrs.OpSearchTicket)).Inc()
		return nil, fmt.Errorf("searching tickets: %w", err)
	}
	c.logger.Info("found tickets", zap.Int("count", len(ids)))

	if c.maxTickets > 0 && len(ids) > c.maxTickets {
		c.logger.Info("limiting tickets for this cycle",
			zap.Int("found", len(ids)),
			zap.Int("max", c.maxTickets),
		)
		ids = ids[:c.maxTickets]
	}

	tickets := make([]otrs.Ticket, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return tickets, err
		}
		t, err := c.source.GetTicket(ctx, id)
		if err != nil {
			c.metrics.PollErrors.WithLabelValues(string(otrs.OpGetTicket)).Inc()
			c.logger.Error("failed to fetch ticket", zap.String("ticket_id", id), zap.Error(err))
			continue
		}
		tickets = append(tickets, *t)
	}

	c.metrics.TicketCount.Reset()
	for _, t := range tickets {
		c.metrics.TicketCount.WithLabelValues(t.State, t.Priority, t.Queue, t.Type).Inc()
	}
	c.metrics.LastSuccess.Set(float64(c.now().Unix()))

	c.logger.Info("polling cycle finished",
		zap.Int("fetched", len(tickets)),
		zap.Duration("took", c.now().Sub(start)),
	)
	return tickets, nil
}

// Run calls RunCycle immediately and then on every interval tick until ctx
// is done. Cycle errors are logged and the next tick is awaited.
func (c *Connector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := c.RunCycle(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("polling cycle failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
