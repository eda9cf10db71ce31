package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/project2052/calculation-service/internal/application/dto"
	"github.com/project2052/calculation-service/internal/application/usecase"
	pkgkafka "github.com/project2052/calculation-service/pkg/kafka"
)

const proposalDeletedEvent = "proposal.deleted"

// Invalidator purges cached results and stored snapshots for a proposal.
type Invalidator interface {
	Execute(ctx context.Context, req dto.InvalidateProposalRequest) (dto.InvalidateProposalResponse, error)
}

var _ Invalidator = (*usecase.InvalidateProposalUseCase)(nil)

// proposalEvent holds the routing fields of a proposal lifecycle event.
// The rest of the payload belongs to the proposal service and is ignored.
type proposalEvent struct {
	EventType  string `json:"event_type"`
	ProposalID string `json:"aggregate_id"`
	TenantID   string `json:"tenant_id"`
}

// ProposalConsumer subscribes to proposal lifecycle events and purges
// calculation state when a proposal is deleted. Every other event type is
// acknowledged and skipped.
type ProposalConsumer struct {
	consumer    *pkgkafka.Consumer
	invalidator Invalidator
	logger      *slog.Logger
}

// NewProposalConsumer wires a consumer for the given topic. Start blocks, so
// callers typically run it on its own goroutine.
func NewProposalConsumer(cfg pkgkafka.Config, topic string, invalidator Invalidator, logger *slog.Logger) *ProposalConsumer {
	c := &ProposalConsumer{
		invalidator: invalidator,
		logger:      logger,
	}
	c.consumer = pkgkafka.NewConsumer(cfg, topic, c.handle, logger)
	return c
}

// Start consumes until the context is cancelled.
func (c *ProposalConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close shuts down the underlying reader.
func (c *ProposalConsumer) Close() error {
	return c.consumer.Close()
}

// handle routes a single proposal event. Undecodable payloads and malformed
// IDs are logged and committed, since redelivering them cannot help; an
// invalidation failure is returned so the message is retried after a
// rebalance.
func (c *ProposalConsumer) handle(ctx context.Context, msg pkgkafka.Message) error {
	var evt proposalEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.WarnContext(ctx, "dropping malformed proposal event",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	if evt.EventType != proposalDeletedEvent {
		return nil
	}

	proposalID, err := uuid.Parse(evt.ProposalID)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping proposal event with invalid aggregate id",
			"aggregate_id", evt.ProposalID,
			"error", err,
		)
		return nil
	}

	tenantID, err := uuid.Parse(evt.TenantID)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping proposal event with invalid tenant id",
			"tenant_id", evt.TenantID,
			"error", err,
		)
		return nil
	}

	resp, err := c.invalidator.Execute(ctx, dto.InvalidateProposalRequest{
		TenantID:   tenantID,
		ProposalID: proposalID,
		Trigger:    proposalDeletedEvent,
	})
	if err != nil {
		return fmt.Errorf("invalidate proposal %s: %w", proposalID, err)
	}

	c.logger.InfoContext(ctx, "purged calculations for deleted proposal",
		"proposal_id", proposalID,
		"cache_entries_removed", resp.CacheEntriesRemoved,
		"snapshots_deleted", resp.SnapshotsDeleted,
	)
	return nil
}
