package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PrintTarget identifies the attendance record a print link renders.
type PrintTarget struct {
	SessionID string
	StudentID string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates signed print tokens. Tokens let a
// freshly opened browser tab fetch a report without an Authorization header.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a signed token for the session/student pair.
func (s *SignedURLSigner) Generate(sessionID, studentID string) (string, time.Time, error) {
	if sessionID == "" || studentID == "" {
		return "", time.Time{}, fmt.Errorf("sessionID and studentID required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encSession := base64.RawURLEncoding.EncodeToString([]byte(sessionID))
	encStudent := base64.RawURLEncoding.EncodeToString([]byte(studentID))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(encSession, encStudent, ts)
	return strings.Join([]string{encSession, encStudent, ts, signature}, "."), expiresAt, nil
}

// Parse validates a token and returns the embedded target.
func (s *SignedURLSigner) Parse(token string) (*PrintTarget, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("signing secret missing")
	}
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid token format")
	}
	encSession, encStudent, ts, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(encSession, encStudent, ts)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, fmt.Errorf("invalid token signature")
	}

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp")
	}
	expiresAt := time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return nil, fmt.Errorf("token expired")
	}

	sessionID, err := base64.RawURLEncoding.DecodeString(encSession)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	studentID, err := base64.RawURLEncoding.DecodeString(encStudent)
	if err != nil {
		return nil, fmt.Errorf("decode student: %w", err)
	}
	return &PrintTarget{SessionID: string(sessionID), StudentID: string(studentID), ExpiresAt: expiresAt}, nil
}

func (s *SignedURLSigner) sign(parts ...string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
