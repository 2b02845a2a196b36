package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/identity"
)

const (
	claimsContextKey   = "identityToken"
	identityContextKey = "identity"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// TokenService issues and verifies the signed bearer tokens handed to clients.
// The signing key comes from the injected configuration; there is no rotation
// and no server-side revocation, tokens die by expiry only.
type TokenService struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
}

func NewTokenService(conf *core.Config) *TokenService {
	return &TokenService{
		signingKey: []byte(conf.SecretKey),
		expiration: conf.JWTExpirationDelta,
		issuer:     conf.AppName,
	}
}

// GetClaims builds the claims set for an authenticated identity.
func (ts *TokenService) GetClaims(ident identity.Identity) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ts.issuer,
			Subject:   ident.ID,
			ExpiresAt: now.Add(ts.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID: ident.ID,
		Email:  ident.Email,
		Role:   ident.Role,
	}
}

// Generate generates a signed JWT token string representing the Claims.
func (ts *TokenService) Generate(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Verify decodes and validates a token string. Malformed, expired and
// badly-signed tokens all fail identically so callers cannot tell them apart.
func (ts *TokenService) Verify(ss string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(ss, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnauthorized
		}
		return ts.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errUnauthorized
	}
	return claims, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextIdentity(ctx echo.Context) (identity.Identity, error) {
	if ident, ok := ctx.Get(identityContextKey).(identity.Identity); ok {
		return ident, nil
	}
	return identity.Identity{}, errUnauthorized
}

// resolveIdentityMiddleware locates the record behind verified token claims
// and attaches the normalized Identity to the request context. All resolution
// failures surface as plain 401s.
func resolveIdentityMiddleware(svc *identity.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			subject := claims.UserID
			if subject == "" {
				subject = claims.Subject // legacy tokens carried the id in sub only
			}

			ident, err := svc.Resolve(ctx.Request().Context(), subject, claims.Role)
			if err != nil {
				if errors.Cause(err) == identity.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "resolving identity")
			}
			ctx.Set(identityContextKey, ident)
			return next(ctx)
		}
	}
}
