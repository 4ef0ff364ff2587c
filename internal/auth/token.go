package auth

import (
	"errors"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Scope tells agent sessions apart from the console's own service identity.
type Scope string

const (
	ScopeAgent   Scope = "agent"
	ScopeService Scope = "service"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	AgentID string `json:"agent_id"`
	Scope   Scope  `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for agentID.
func (tm *TokenManager) GenerateToken(agentID string, scope Scope) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		AgentID: agentID,
		Scope:   scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   agentID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.AgentID == "" {
		return nil, errors.New("token carries no agent")
	}
	return claims, nil
}

// ServiceTokenSource mints and caches the bearer token the console presents
// to the support backend. A token is renewed once it is within a minute of
// expiring.
type ServiceTokenSource struct {
	tokens  *TokenManager
	agentID string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewServiceTokenSource returns a token source for the service identity.
func NewServiceTokenSource(tokens *TokenManager, agentID string) *ServiceTokenSource {
	return &ServiceTokenSource{tokens: tokens, agentID: agentID}
}

// Token returns a valid service token.
func (s *ServiceTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && s.tokens.now().Add(time.Minute).Before(s.expiresAt) {
		return s.token, nil
	}
	token, exp, err := s.tokens.GenerateToken(s.agentID, ScopeService)
	if err != nil {
		return "", err
	}
	s.token, s.expiresAt = token, exp
	return token, nil
}
