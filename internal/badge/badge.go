package badge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"visitor-registration/internal/config"
	"visitor-registration/internal/nonce"
)

var (
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrNonValidToken    = errors.New("token did not pass validation")
	ErrInvalidClaimType = errors.New("invalid claim type")
)

var tokenSignatureAlg = jwt.SigningMethodHS256

// Claim for a self-checkout badge. The token is handed out on registration
// (embedded in the confirmation QR) and allows the visitor to check
// themselves out with a single scan. The name rides along so the farewell
// message never needs a re-read of the record.
type BadgeClaim struct {
	VisitorID int64  `json:"visitor_id"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

func NewBadgeClaim(visitorID int64, name string) BadgeClaim {
	return BadgeClaim{
		VisitorID:        visitorID,
		Name:             name,
		RegisteredClaims: mustCreateRegisteredClaim(config.Cfg.BadgeTTL),
	}
}

// DecodeBadgeJWT verifies a badge token and consumes its nonce. A badge link
// is single use; a replayed token fails with ErrInvalidNonce.
func DecodeBadgeJWT(ctx context.Context, tokenString string) (*BadgeClaim, error) {
	claims, err := decodeJWT(tokenString, &BadgeClaim{})
	if err != nil {
		return nil, err
	}
	if ok, err := nonce.Store.Consume(ctx, claims.ID); err != nil || !ok {
		if err != nil {
			return nil, err
		}
		return nil, ErrInvalidNonce
	}
	return claims, nil
}

func mustCreateRegisteredClaim(ttl uint) jwt.RegisteredClaims {
	// nonce TTL is slightly longer than token TTL to allow for clock skew
	n, err := nonce.Nonce(ttl + config.Cfg.BadgeTTLSkew)
	if err != nil {
		panic(fmt.Sprintf("failed to generate nonce: %v", err))
	}

	return jwt.RegisteredClaims{
		ID:        n,
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		ExpiresAt: jwtExpiry(ttl),
	}
}

// Convert TTL to time in future
func tokenTTL(ttl uint) time.Time {
	if ttl <= 0 {
		panic("invalid token TTL")
	}
	return time.Now().UTC().Add(time.Duration(ttl) * time.Second)
}

func jwtExpiry(ttl uint) *jwt.NumericDate {
	expiry := tokenTTL(ttl)
	return jwt.NewNumericDate(expiry)
}

// Generic JWT token generation function
func GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(tokenSignatureAlg, claims)
	JWTSecret := []byte(config.Cfg.Secret)
	return token.SignedString(JWTSecret)
}

func decodeJWT[T jwt.Claims](tokenString string, claimsType T) (T, error) {
	var zero T

	parsedToken, err := jwt.ParseWithClaims(tokenString, claimsType, func(token *jwt.Token) (interface{}, error) {
		JWTSecret := []byte(config.Cfg.Secret)
		return JWTSecret, nil
	}, jwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}))

	if err != nil {
		return zero, err
	} else if parsedToken == nil || !parsedToken.Valid {
		return zero, ErrNonValidToken
	} else if claims, ok := parsedToken.Claims.(T); ok {
		return claims, nil
	}

	return zero, ErrInvalidClaimType
}
