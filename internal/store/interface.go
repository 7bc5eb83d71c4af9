// Package store defines the persistence interface for the NutriTrack server.
package store

import (
	"context"
	"time"

	"github.com/nutritrackapp/nutritrack-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Product cache
	GetCachedProduct(ctx context.Context, code string) (*domain.Product, error)
	UpsertProducts(ctx context.Context, products []*domain.Product) error
	SearchCachedProducts(ctx context.Context, query string, limit int) ([]*domain.Product, error)
	CountCachedProducts(ctx context.Context) (int, error)
	DeleteCachedProductsBefore(ctx context.Context, cutoff time.Time) (int, error)

	// Log entries
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	GetEntryByDate(ctx context.Context, userID, date string) (*domain.Entry, error)
	CreateEntry(ctx context.Context, entry *domain.Entry) error
	ListEntryItems(ctx context.Context, entryID string) ([]*domain.EntryItem, error)
	GetEntryItem(ctx context.Context, id string) (*domain.EntryItem, error)
	CreateEntryItem(ctx context.Context, item *domain.EntryItem) error
	UpdateEntryItem(ctx context.Context, item *domain.EntryItem) error
	DeleteEntryItem(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}
