package token

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"accounts-core/internal/account/entity"
	"accounts-core/pkg/utilities"
)

// DefaultTTL applies when no explicit token lifetime is configured or passed.
const DefaultTTL = 15 * time.Minute

// ErrMalformedToken covers bad signature, wrong algorithm, expired or
// otherwise unparseable tokens.
var ErrMalformedToken = errors.New("malformed token")

// Config carries the signing parameters. The secret always comes from
// external configuration; there is no built-in default.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// ConfigFromEnv reads signing config from environment variables. It fails
// when AUTH_SECRET is absent so a process can never start with a guessable
// key.
func ConfigFromEnv() (Config, error) {
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		return Config{}, errors.New("AUTH_SECRET is required")
	}
	ttl := DefaultTTL
	if v := os.Getenv("AUTH_TOKEN_TTL_MINUTES"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return Config{}, fmt.Errorf("invalid AUTH_TOKEN_TTL_MINUTES: %q", v)
		}
		ttl = time.Duration(mins) * time.Minute
	}
	return Config{Secret: []byte(secret), TTL: ttl}, nil
}

// Claims are the signed contents of a bearer token: the public user
// projection plus the registered expiry.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Group       string `json:"group"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Store is the subset of the account store the verifier needs: a point-read
// confirming the token's subject still exists.
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Service issues and verifies bearer tokens. Issuance is a pure function of
// input, clock and secret; verification additionally point-reads the store.
type Service struct {
	cfg   Config
	store Store
}

func NewService(cfg Config, store Store) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{cfg: cfg, store: store}
}

// Issue signs a token carrying the user's public fields, expiring ttl from
// now. A non-positive ttl falls back to the configured lifetime.
func (s *Service) Issue(u entity.PublicUser, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.cfg.TTL
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utilities.NewSnowflakeID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Group:       u.Group,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode parses and validates signature and expiry only; it does not touch
// the store. Any parse or validation failure comes back as ErrMalformedToken.
func (s *Service) Decode(tok string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if !parsed.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// Verify reports whether tok is currently usable: it decodes, names a user,
// and that user still exists in the store. The boolean-only contract is
// deliberate; callers needing a reason decode directly.
func (s *Service) Verify(ctx context.Context, tok string) bool {
	claims, err := s.Decode(tok)
	if err != nil {
		return false
	}
	if claims.UserID == 0 {
		return false
	}
	exists, err := s.store.Exists(ctx, claims.UserID)
	if err != nil {
		return false
	}
	return exists
}
