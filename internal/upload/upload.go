// Package upload stores user-submitted images under the shared upload
// directory and returns the public URL of each stored file.
package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PublicPrefix is the URL prefix under which uploads are served.
const PublicPrefix = "/static/uploads"

var (
	// ErrNoFile reports a form submission without a file.
	ErrNoFile = errors.New("upload: no file selected")
	// ErrNotAllowed reports a file whose extension is not accepted.
	ErrNotAllowed = errors.New("upload: file type not allowed")
)

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]struct{}{
	"CON": {}, "AUX": {}, "COM1": {}, "COM2": {}, "COM3": {}, "COM4": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "PRN": {}, "NUL": {},
}

// Allowed reports whether filename carries an accepted image extension.
func Allowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[idx+1:])]
	return ok
}

// SecureFilename reduces name to a safe ASCII file name without path
// components. It may return an empty string.
func SecureFilename(name string) string {
	toASCII := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, errTransform := transform.String(toASCII, name)
	if errTransform != nil {
		ascii = name
	}

	ascii = strings.NewReplacer("/", " ", `\`, " ").Replace(ascii)
	ascii = strings.Join(strings.Fields(ascii), "_")
	ascii = unsafeFilenameChars.ReplaceAllString(ascii, "")
	ascii = strings.Trim(ascii, "._")

	if ascii != "" {
		base := strings.ToUpper(strings.SplitN(ascii, ".", 2)[0])
		if _, reserved := windowsDeviceNames[base]; reserved {
			ascii = "_" + ascii
		}
	}
	return ascii
}

// Saver writes uploads into Dir.
type Saver struct {
	Dir   string
	nowFn func() time.Time
}

// NewSaver constructs a Saver and ensures dir exists.
func NewSaver(dir string) (*Saver, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("upload: empty directory")
	}
	if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
		return nil, fmt.Errorf("upload: create directory: %w", errMkdir)
	}
	return &Saver{Dir: dir, nowFn: time.Now}, nil
}

// SetNow replaces the clock used for timestamped names.
func (s *Saver) SetNow(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// StoredName builds the on-disk name of an upload for userID.
func (s *Saver) StoredName(userID uint64, filename string, withTimestamp bool) string {
	safe := SecureFilename(filename)
	if withTimestamp {
		return fmt.Sprintf("%d_%d_%s", userID, s.nowFn().Unix(), safe)
	}
	return fmt.Sprintf("%d_%s", userID, safe)
}

// Save validates and writes file, returning its public URL.
func (s *Saver) Save(file *multipart.FileHeader, userID uint64, withTimestamp bool) (string, error) {
	if file == nil || strings.TrimSpace(file.Filename) == "" {
		return "", ErrNoFile
	}
	if !Allowed(file.Filename) || SecureFilename(file.Filename) == "" {
		return "", ErrNotAllowed
	}
	name := s.StoredName(userID, file.Filename, withTimestamp)

	src, errOpen := file.Open()
	if errOpen != nil {
		return "", fmt.Errorf("upload: open: %w", errOpen)
	}
	defer func() { _ = src.Close() }()

	dst, errCreate := os.Create(filepath.Join(s.Dir, name))
	if errCreate != nil {
		return "", fmt.Errorf("upload: create: %w", errCreate)
	}
	if _, errCopy := dst.ReadFrom(src); errCopy != nil {
		_ = dst.Close()
		return "", fmt.Errorf("upload: write: %w", errCopy)
	}
	if errClose := dst.Close(); errClose != nil {
		return "", fmt.Errorf("upload: close: %w", errClose)
	}
	return path.Join(PublicPrefix, name), nil
}
