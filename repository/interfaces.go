package repository

import (
	"context"
	"time"

	"foodDeliveryAdmin/models"
)

// SessionRepositoryI defines operations on persisted admin sessions.
type SessionRepositoryI interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// DispatchLogRepositoryI defines operations on the dispatch journal.
type DispatchLogRepositoryI interface {
	Append(ctx context.Context, rec *models.DispatchRecord) (*models.DispatchRecord, error)
	ListRecent(ctx context.Context, limit int, beforeID int64) ([]models.DispatchRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.DispatchRecord, error)
}
