package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrRouteNotFound     = errors.New("route not found")
	ErrWaypointNotFound  = errors.New("waypoint not found")
	ErrEmailTaken        = errors.New("email already in use")
	ErrUsernameTaken     = errors.New("username already in use")
	ErrMissingCredential = errors.New("either password or google id must be provided")
	ErrAlreadyJoined     = errors.New("route already joined")
	ErrNotJoined         = errors.New("route not joined")
	ErrAlreadyVisited    = errors.New("waypoint already visited")
	ErrTokenExhausted    = errors.New("could not generate a unique visit token")
)

// Store is the storage client shared by every request handler. It is built
// once at startup around an open connection pool.
type Store struct {
	db       *gorm.DB
	newToken func() string
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, newToken: uuid.NewString}
}

// DB exposes the underlying handle for lifecycle management.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// isUniqueViolation recognises unique-constraint failures from both the
// translated gorm error (sqlite) and lib/pq (postgres, SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
