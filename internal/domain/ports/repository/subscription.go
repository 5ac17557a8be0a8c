package repository

import (
	"context"

	"pure-resume/internal/domain/model"
)

// SubscriptionRepository is the port for the append-only redemption ledger.
type SubscriptionRepository interface {
	// Append writes one ledger record. Records are never updated or deleted.
	Append(ctx context.Context, tx Tx, rec *model.SubscriptionRecord) error

	// ListByUser returns a user's redemption history, newest first.
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.SubscriptionRecord, error)
}
