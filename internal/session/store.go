// Package session maps an opaque cookie-borne session id to server-side
// session data.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession reports a request without a session in its context.
var ErrNoSession = errors.New("session: no session in context")

// Data is the server-side state of one session.
type Data struct {
	UserID  uint64   `json:"user_id,omitempty"` // Authenticated user, zero when anonymous.
	Flashes []string `json:"flashes,omitempty"` // Pending one-shot messages.
}

// Store persists session data by id.
type Store interface {
	// Load returns the data of id, or nil when it is unknown or expired.
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

func cloneData(data *Data) *Data {
	if data == nil {
		return &Data{}
	}
	out := &Data{UserID: data.UserID}
	if len(data.Flashes) > 0 {
		out.Flashes = append([]string(nil), data.Flashes...)
	}
	return out
}
