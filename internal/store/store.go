// Package store is the data-access layer of Rootly. Every method persists
// immediately; lookups by id return a nil record when the row is absent.
package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Default windows for the dashboard queries.
const (
	DefaultRecentCareDays       = 30
	DefaultUpcomingReminderDays = 7
)

var (
	// ErrNotFound reports a missing row where a nil record cannot express it.
	ErrNotFound = errors.New("store: not found")
	// ErrEmailTaken reports a registration with an email already in use.
	ErrEmailTaken = errors.New("store: email already registered")
	// ErrAlreadyResolved reports an attempt to un-resolve a health assessment.
	ErrAlreadyResolved = errors.New("store: assessment already resolved")
)

// Store wraps a GORM connection with Rootly's queries.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for defaults and windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Store over conn.
func New(conn *gorm.DB, opts ...Option) *Store {
	s := &Store{db: conn, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) nowUTC() time.Time {
	return s.now().UTC()
}

// today returns midnight UTC of the current day.
func (s *Store) today() time.Time {
	return StartOfDay(s.nowUTC())
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// notFound maps gorm.ErrRecordNotFound to a nil error.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
