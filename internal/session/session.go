package session

import "context"

type contextKey struct{}

// Session is the per-request view of a stored session.
type Session struct {
	id      string
	data    *Data
	dirty   bool
	rotated []string // Previous ids to delete on commit.
}

func newSession(id string, data *Data) *Session {
	if data == nil {
		data = &Data{}
	}
	return &Session{id: id, data: data}
}

// ID returns the session id, empty until the session is first persisted.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// UserID returns the authenticated user id or zero.
func (s *Session) UserID() uint64 {
	if s == nil {
		return 0
	}
	return s.data.UserID
}

// Login binds the session to userID under a fresh id.
func (s *Session) Login(userID uint64) {
	if s == nil {
		return
	}
	s.rotate()
	s.data.UserID = userID
	s.dirty = true
}

// Logout clears the user while keeping pending flashes.
func (s *Session) Logout() {
	if s == nil {
		return
	}
	s.rotate()
	s.data.UserID = 0
	s.dirty = true
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(message string) {
	if s == nil || message == "" {
		return
	}
	s.data.Flashes = append(s.data.Flashes, message)
	s.dirty = true
}

// Flashes returns and clears the queued messages.
func (s *Session) Flashes() []string {
	if s == nil || len(s.data.Flashes) == 0 {
		return nil
	}
	out := s.data.Flashes
	s.data.Flashes = nil
	s.dirty = true
	return out
}

func (s *Session) rotate() {
	if s.id != "" {
		s.rotated = append(s.rotated, s.id)
	}
	s.id = ""
}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session carried by ctx or nil.
func FromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	sess, _ := ctx.Value(contextKey{}).(*Session)
	return sess
}
