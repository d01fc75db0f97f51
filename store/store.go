// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Case operations, always scoped to the owning user
	CreateCase(ctx context.Context, record *domain.CaseRecord) error
	GetCase(ctx context.Context, id, userID int64) (*domain.CaseRecord, error)
	ListCases(ctx context.Context, userID int64) ([]domain.CaseSummary, error)
	UpdateCase(ctx context.Context, record *domain.CaseRecord) error
	DeleteCase(ctx context.Context, id, userID int64) error

	// Lifecycle
	Close() error
}
