package repository

import (
	"context"
	"time"

	"canyon-booking/internal/infra"
	"canyon-booking/internal/infra/db"
)

type WebhookEventRepository struct{}

func NewWebhookEventRepository() *WebhookEventRepository {
	return &WebhookEventRepository{}
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, tx db.DBTX, provider, eventID string, at time.Time) (bool, error) {
	q := db.SQ.Insert("processed_webhook_events").
		Columns("provider", "event_id", "processed_at").
		Values(provider, eventID, at).
		Suffix("ON CONFLICT (provider, event_id) DO NOTHING")
	n, err := db.Exec(ctx, tx, q)
	if err != nil {
		return false, infra.WrapRepoErr("failed to record webhook event", err)
	}
	return n == 1, nil
}
