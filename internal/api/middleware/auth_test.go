package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	token, err := IssueToken("s3cret", "u1", time.Minute)
	require.NoError(t, err)

	sub, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, err := IssueToken("s3cret", "u1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", expired)
	assert.Error(t, err)
}

func TestParseToken_RejectsNonHMACAndEmptySubject(t *testing.T) {
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", none)
	assert.Error(t, err)

	blank, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseToken("s3cret", blank)
	assert.ErrorIs(t, err, errNoSubject)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware("s3cret", zerolog.Nop()))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, GetMemberID(c))
	})

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}

	token, err := IssueToken("s3cret", "u7", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u7", rec.Body.String())
}

func TestRequireMemberID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	_, ok := RequireMemberID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
