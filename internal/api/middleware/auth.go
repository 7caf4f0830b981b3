package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const memberIDKey = "memberID"

var errNoSubject = errors.New("token has no subject")

// ParseToken validates an HMAC-signed JWT and returns its subject, the
// acting member id.
func ParseToken(secret, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return "", errNoSubject
	}
	return claims.Subject, nil
}

// IssueToken signs a token for memberID. Used by tests and development
// tooling; production tokens come from the identity provider.
func IssueToken(secret, memberID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   memberID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware validates JWT tokens and sets the acting member in context.
func AuthMiddleware(secret string, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "auth").Logger()
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			log.Debug().Str("path", c.Request.URL.Path).Msg("missing or malformed authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		memberID, err := ParseToken(secret, tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(memberIDKey, memberID)
		c.Next()
	}
}

// RequestLogger logs every request with its status and latency.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("member_id", GetMemberID(c)).
			Msg("request")

		for _, e := range c.Errors {
			log.Error().Err(e.Err).Str("path", c.Request.URL.Path).Msg("handler error")
		}
	}
}

// GetMemberID extracts the acting member id from gin context.
func GetMemberID(c *gin.Context) string {
	return c.GetString(memberIDKey)
}

// RequireMemberID aborts with 401 when no member is authenticated.
func RequireMemberID(c *gin.Context) (string, bool) {
	memberID := GetMemberID(c)
	if memberID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Member not authenticated"})
		return "", false
	}
	return memberID, true
}
