package security

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// legacyPBKDF2DefaultIterations matches the werkzeug default when the
// iteration count is omitted from the method string.
const legacyPBKDF2DefaultIterations = 600000

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("security: empty password")

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	hashed, errHash := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errHash != nil {
		return "", errHash
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hashed. Both bcrypt hashes and
// werkzeug "pbkdf2:<digest>[:<iterations>]$<salt>$<hex>" hashes are accepted.
func CheckPassword(hashed, password string) bool {
	hashed = strings.TrimSpace(hashed)
	if hashed == "" {
		return false
	}
	if strings.HasPrefix(hashed, "pbkdf2:") {
		return checkLegacyPBKDF2(hashed, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// IsLegacyHash reports whether hashed was produced by the previous werkzeug-based stack.
func IsLegacyHash(hashed string) bool {
	return strings.HasPrefix(strings.TrimSpace(hashed), "pbkdf2:")
}

func checkLegacyPBKDF2(hashed, password string) bool {
	method, rest, ok := strings.Cut(hashed, "$")
	if !ok {
		return false
	}
	salt, digestHex, ok := strings.Cut(rest, "$")
	if !ok {
		return false
	}
	expected, errDecode := hex.DecodeString(digestHex)
	if errDecode != nil || len(expected) == 0 {
		return false
	}

	parts := strings.Split(method, ":")
	if len(parts) < 2 || parts[0] != "pbkdf2" {
		return false
	}
	var newHash func() hash.Hash
	switch parts[1] {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	case "sha1":
		newHash = sha1.New
	default:
		return false
	}
	iterations := legacyPBKDF2DefaultIterations
	if len(parts) > 2 {
		parsed, errParse := strconv.Atoi(parts[2])
		if errParse != nil || parsed <= 0 {
			return false
		}
		iterations = parsed
	}

	derived := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(expected), newHash)
	return hmac.Equal(derived, expected)
}
