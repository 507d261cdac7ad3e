package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hsdfat8/gridops/internal/domain/models"
)

const (
	actorKey = "gridops.actor"
	userKey  = "gridops.user"
)

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// SessionManager issues and verifies HS256 session tokens carried in a cookie
type SessionManager struct {
	secret     []byte
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

type sessionClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionManager creates a session manager
func NewSessionManager(cfg SessionConfig) *SessionManager {
	if cfg.CookieName == "" {
		cfg.CookieName = "gridops_session"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 24 * time.Hour
	}
	return &SessionManager{
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Token signs a session token for user
func (m *SessionManager) Token(user *models.User) (string, error) {
	now := m.now()
	claims := sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies a token and returns the user id it was issued for
func (m *SessionManager) Parse(token string) (int64, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if !parsed.Valid {
		return 0, models.ErrUnauthorized
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject", models.ErrUnauthorized)
	}
	return id, nil
}

// Issue writes the session cookie for user
func (m *SessionManager) Issue(c *gin.Context, user *models.User) error {
	token, err := m.Token(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.maxAge/time.Second), "/", "", m.secure, true)
	return nil
}

// Clear expires the session cookie
func (m *SessionManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

// userLookup loads the current state of a session's user
type userLookup func(c *gin.Context, id int64) (*models.User, error)

// requireSession rejects requests without a valid session for an active user.
// The role is read from the stored user so role changes apply immediately.
func (m *SessionManager) requireSession(lookup userLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			abortProblem(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		id, err := m.Parse(token)
		if err != nil {
			abortProblem(c, http.StatusUnauthorized, "Session is invalid or expired")
			return
		}

		user, err := lookup(c, id)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				_ = c.Error(err)
			}
			abortProblem(c, http.StatusUnauthorized, "Session user no longer exists")
			return
		}
		if !user.IsActive {
			abortProblem(c, http.StatusUnauthorized, "Account is disabled")
			return
		}

		c.Set(userKey, user)
		c.Set(actorKey, models.Actor{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// requireRole rejects authenticated users whose role is not listed
func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		abortProblem(c, http.StatusForbidden, fmt.Sprintf("Role %q may not access this resource", actor.Role))
	}
}

func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

func userFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
