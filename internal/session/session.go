package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"chickenshop-admin/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Session is the authenticated caller of a request
type Session struct {
	UserID string
	Email  string
	Type   models.UserType
}

// Claims carried by session tokens; the subject is the user id
type Claims struct {
	Email string          `json:"email"`
	Type  models.UserType `json:"type"`
	jwt.RegisteredClaims
}

// JWTProvider issues and verifies HS256 session tokens
type JWTProvider struct {
	secret     []byte
	expireTime time.Duration
	nowFunc    func() time.Time
}

func NewJWTProvider(secret string, expireHours int) *JWTProvider {
	return &JWTProvider{
		secret:     []byte(secret),
		expireTime: time.Duration(expireHours) * time.Hour,
		nowFunc:    time.Now,
	}
}

// Issue signs a token for user
func (p *JWTProvider) Issue(user models.User) (string, error) {
	now := p.nowFunc()
	claims := Claims{
		Email: user.Email,
		Type:  user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expireTime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Parse verifies token and returns the session it carries
func (p *JWTProvider) Parse(token string) (*Session, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !claims.VerifyExpiresAt(p.nowFunc(), true) {
		return nil, ErrTokenExpired
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Type:   claims.Type,
	}, nil
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached to ctx, if any
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// ContextResolver resolves the current session from the request context
type ContextResolver struct{}

// CurrentSession returns nil when the request carries no session
func (ContextResolver) CurrentSession(ctx context.Context) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return nil, nil
	}
	return s, nil
}

// Middleware attaches the session of a valid bearer token to the request context.
// Requests without a usable token pass through anonymously.
func Middleware(provider *JWTProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		s, err := provider.Parse(parts[1])
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", s.UserID)
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), s))
		c.Next()
	}
}
