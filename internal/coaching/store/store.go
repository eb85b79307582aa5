package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/day"
	"github.com/2beens/fitcoach/internal/coaching/roster"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
)

// StoreError is returned for every failed round trip to the backing database.
// Callers must not assume any part of a failed write was applied.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// User is a sign-in account. Coach and clients both have one; a client's profile shares its id.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Store is implemented by Postgres and SQLite.
type Store interface {
	ListRecordsForClient(ctx context.Context, clientID string) ([]day.DayRecord, error)
	UpsertDay(ctx context.Context, clientID string, date day.Date, record day.DayRecord) error

	ListClients(ctx context.Context) ([]roster.ClientProfile, error)
	GetClient(ctx context.Context, clientID string) (*roster.ClientProfile, error)
	UpsertClientRole(ctx context.Context, userID, email string) error
	CreateClient(ctx context.Context, profile roster.ClientProfile) error
	UpdateClientStatus(ctx context.Context, clientID string, isActive bool, expiresAt *time.Time) error
	UpdateTargets(ctx context.Context, clientID string, targets day.Targets) error
	DeleteClient(ctx context.Context, clientID string) error

	// AppendMessage stores msg and raises the unread flag of the receiving party.
	AppendMessage(ctx context.Context, msg roster.Message) error
	ListMessages(ctx context.Context, clientID string) ([]roster.Message, error)
	// MarkMessagesRead clears the unread flag of the reading party.
	MarkMessagesRead(ctx context.Context, clientID string, readerIsCoach bool) error

	AddUser(ctx context.Context, user User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	Close() error
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
)
