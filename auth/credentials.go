package auth

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc/credentials"
)

var _ credentials.PerRPCCredentials = (*TokenCredentials)(nil)

// TokenCredentials attaches a bearer token to every outgoing call.
// The token is regenerated once less than a fifth of its lifetime remains.
type TokenCredentials struct {
	secret  string
	subject string
	ttl     time.Duration

	mu       sync.Mutex
	token    string
	expireAt time.Time
}

func NewTokenCredentials(secret, subject string, ttl time.Duration) *TokenCredentials {
	return &TokenCredentials{secret: secret, subject: subject, ttl: ttl}
}

func (c *TokenCredentials) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.token == "" || now.Add(c.ttl/5).After(c.expireAt) {
		token, err := GenerateToken(c.secret, c.subject, c.ttl)
		if err != nil {
			return nil, err
		}
		c.token = token
		c.expireAt = now.Add(c.ttl)
	}
	return map[string]string{"authorization": "Bearer " + c.token}, nil
}

// RequireTransportSecurity is false: the repository is reached over plaintext on trusted networks.
func (c *TokenCredentials) RequireTransportSecurity() bool {
	return false
}
