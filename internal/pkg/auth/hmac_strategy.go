package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid auth token")
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

const (
	tokenVersion    = "v1"
	claimsSeparator = "|"
	defaultTokenTTL = 24 * time.Hour
)

var tokenEncoding = base64.RawURLEncoding

// HMACStrategy signs tokens of the form "<claims>.<signature>". Claims are
// the URL-safe encoding of "v1|userID|expiresUnix|nonce", so tokens fit in
// cookies and headers without escaping.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: now}
}

// IssueToken generates signed auth token for the user.
func (s *HMACStrategy) IssueToken(userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("%w: user id %d", ErrInvalidToken, userID)
	}
	claims := strings.Join([]string{
		tokenVersion,
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(s.now().Add(s.ttl).Unix(), 10),
		uuid.NewString(),
	}, claimsSeparator)
	payload := tokenEncoding.EncodeToString([]byte(claims))
	return payload + "." + s.sign(payload), nil
}

// ParseToken validates token and returns encoded user ID.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || payload == "" {
		return 0, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(payload))) {
		return 0, ErrInvalidToken
	}

	raw, err := tokenEncoding.DecodeString(payload)
	if err != nil {
		return 0, ErrInvalidToken
	}
	parts := strings.Split(string(raw), claimsSeparator)
	if len(parts) != 4 || parts[0] != tokenVersion {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if !s.now().Before(time.Unix(expires, 0)) {
		return 0, ErrTokenExpired
	}

	return userID, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return tokenEncoding.EncodeToString(mac.Sum(nil))
}
