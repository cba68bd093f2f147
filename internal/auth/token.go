package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenManager signs and verifies the opaque identity tokens presented in
// the x-jwt header. Tokens carry only the user id; everything else about the
// caller is resolved against the store per request.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager. The secret is process-wide and
// read-only after startup.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Claims describes the JWT payload.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// Sign builds and signs a token for the user id.
func (tm *TokenManager) Sign(userID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Verify returns the user id carried by the token. Malformed input, a bad
// signature, an unexpected algorithm and expiry all collapse into the same
// (0, false) result so callers cannot tell the failure modes apart.
func (tm *TokenManager) Verify(tokenStr string) (int64, bool) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		return 0, false
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID <= 0 {
		return 0, false
	}
	return claims.UserID, true
}
