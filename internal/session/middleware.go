package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rootly-app/rootly/internal/security"
	log "github.com/sirupsen/logrus"
)

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Name   string
	Secret string // Signs the session id carried by the cookie.
	TTL    time.Duration
	Secure bool
}

// Middleware loads the session named by the request cookie into the request
// context and persists changes before the response headers are written.
func Middleware(store Store, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := newSession("", nil)
		if cookie, errCookie := c.Request.Cookie(opts.Name); errCookie == nil && cookie.Value != "" {
			if id, errParse := security.ParseSessionID(opts.Secret, cookie.Value); errParse == nil {
				data, errLoad := store.Load(ctx, id)
				if errLoad != nil {
					log.WithError(errLoad).Warn("session: load failed")
				} else if data != nil {
					sess = newSession(id, data)
				}
			}
		}

		c.Request = c.Request.WithContext(NewContext(ctx, sess))
		writer := &committingWriter{ResponseWriter: c.Writer}
		writer.commit = func() { commit(c, store, opts, sess) }
		c.Writer = writer

		c.Next()

		writer.commitOnce()
	}
}

// Get returns the session of the request, or a detached empty session when
// the middleware is not installed.
func Get(c *gin.Context) *Session {
	if sess := FromContext(c.Request.Context()); sess != nil {
		return sess
	}
	return newSession("", nil)
}

func commit(c *gin.Context, store Store, opts CookieOptions, sess *Session) {
	ctx := c.Request.Context()
	for _, old := range sess.rotated {
		if errDelete := store.Delete(ctx, old); errDelete != nil {
			log.WithError(errDelete).Warn("session: delete rotated session failed")
		}
	}
	sess.rotated = nil
	if !sess.dirty {
		return
	}
	sess.dirty = false

	if sess.id == "" {
		if sess.data.UserID == 0 && len(sess.data.Flashes) == 0 {
			clearCookie(c, opts)
			return
		}
		sess.id = uuid.NewString()
	}
	if errSave := store.Save(ctx, sess.id, sess.data, opts.TTL); errSave != nil {
		log.WithError(errSave).Error("session: save failed")
		return
	}
	now := time.Now()
	token, errSign := security.SignSessionID(opts.Secret, sess.id, opts.TTL, now)
	if errSign != nil {
		log.WithError(errSign).Error("session: sign cookie failed")
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(opts.TTL),
		MaxAge:   int(opts.TTL / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(c *gin.Context, opts CookieOptions) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// committingWriter persists the session right before headers go out.
type committingWriter struct {
	gin.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *committingWriter) commitOnce() {
	w.once.Do(w.commit)
}

func (w *committingWriter) WriteHeader(code int) {
	w.commitOnce()
	w.ResponseWriter.WriteHeader(code)
}

func (w *committingWriter) WriteHeaderNow() {
	w.commitOnce()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *committingWriter) Write(data []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(data)
}

func (w *committingWriter) WriteString(s string) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.WriteString(s)
}
