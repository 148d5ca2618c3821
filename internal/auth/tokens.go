package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"motorvault-api/internal/domain"
	"motorvault-api/pkg/uid"
)

// TokenService issues and verifies signed session tokens. Tokens are JWTs;
// each live session is also recorded in Redis so sign-out revokes it before
// the JWT itself expires.
type TokenService struct {
	client    *redis.Client
	secret    []byte
	ttl       time.Duration
	keyPrefix string
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewTokenService connects to Redis and returns a token service.
func NewTokenService(addr, password string, db int, secret string, ttl time.Duration) (*TokenService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &TokenService{
		client:    client,
		secret:    []byte(secret),
		ttl:       ttl,
		keyPrefix: "motorvault:session:",
	}, nil
}

// TTL returns the configured session lifetime.
func (t *TokenService) TTL() time.Duration { return t.ttl }

// Close releases the Redis connection.
func (t *TokenService) Close() error { return t.client.Close() }

// Issue creates a session for the principal and returns the signed token.
func (t *TokenService) Issue(ctx context.Context, p *Principal) (string, error) {
	sessionID := uid.New()
	now := time.Now()

	claims := sessionClaims{
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := t.client.Set(ctx, t.keyPrefix+sessionID, data, t.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	return token, nil
}

// Verify checks the token signature and that the session has not been
// revoked, returning the principal it belongs to.
func (t *TokenService) Verify(ctx context.Context, token string) (*Principal, error) {
	claims, err := t.parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	data, err := t.client.Get(ctx, t.keyPrefix+claims.ID).Bytes()
	if errors.Is(err, redis.Nil) {
		// Revoked or expired server-side.
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}

	var p Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Revoke removes the session record so the token stops verifying.
func (t *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := t.parse(token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	return t.client.Del(ctx, t.keyPrefix+claims.ID).Err()
}

func (t *TokenService) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
