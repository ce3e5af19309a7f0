package launcher

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Launch token configuration
	tokenPrefix     = "pslv:launch:"
	defaultTokenTTL = 5 * time.Minute
)

// LaunchToken records one authorized application start. Tokens are an audit
// aid; they expire on their own and are never required to keep an already
// started application running.
type LaunchToken struct {
	ID        string    `json:"id"`
	App       string    `json:"app"`
	UserSID   string    `json:"user_sid"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Signature string    `json:"signature"`
}

// TokenStore keeps short-lived launch tokens in Redis, signed with the host
// secret so entries written by anything else fail verification.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
	secret []byte
}

// NewTokenStore creates a Redis-backed launch token store.
func NewTokenStore(redisAddr, secret string) (*TokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TokenStore{
		client: client,
		ttl:    defaultTokenTTL,
		secret: []byte(secret),
	}, nil
}

// Mint creates a launch token for one start of the given app.
func (s *TokenStore) Mint(ctx context.Context, app, userSID string) (*LaunchToken, error) {
	id, err := generateTokenID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token ID: %w", err)
	}

	now := time.Now()
	token := &LaunchToken{
		ID:        id,
		App:       app,
		UserSID:   userSID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
		Signature: sign(s.secret, id, app, userSID),
	}

	data, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}

	key := tokenPrefix + id
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Get retrieves a token by ID. Expired or missing tokens yield nil; a stored
// token with a bad signature is an error.
func (s *TokenStore) Get(ctx context.Context, id string) (*LaunchToken, error) {
	key := tokenPrefix + id
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Token expired or never existed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var token LaunchToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	if !Verify(s.secret, &token) {
		return nil, fmt.Errorf("launch token %s failed verification", id)
	}
	return &token, nil
}

// Consume retrieves a token and removes it in the same call, so a token
// authorizes at most one start. A second Consume of the same ID yields nil.
func (s *TokenStore) Consume(ctx context.Context, id string) (*LaunchToken, error) {
	token, err := s.Get(ctx, id)
	if err != nil || token == nil {
		return token, err
	}
	if err := s.Delete(ctx, id); err != nil {
		return nil, err
	}
	return token, nil
}

// Delete removes a token before its TTL runs out.
func (s *TokenStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, tokenPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *TokenStore) Close() error {
	return s.client.Close()
}

// sign computes the HMAC binding a token to this host's secret.
func sign(secret []byte, id, app, userSID string) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s:%s:%s", id, app, userSID)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a token's signature against the host secret.
func Verify(secret []byte, token *LaunchToken) bool {
	expected := sign(secret, token.ID, token.App, token.UserSID)
	return hmac.Equal([]byte(expected), []byte(token.Signature))
}

// generateTokenID creates a cryptographically secure random token ID.
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
