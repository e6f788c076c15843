package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SubjectKey is the gin context key holding the verified token subject
const SubjectKey = "subject"

// JWTVerifier checks HS256 bearer tokens against a shared secret
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a new JWT verifier. An empty secret disables
// verification entirely.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Enabled reports whether requests must carry a token
func (v *JWTVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// ExtractSubject verifies tokenString and returns its sub claim
func (v *JWTVerifier) ExtractSubject(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return "", fmt.Errorf("empty token")
	}

	token, err := v.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("invalid token claims: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("no sub claim in token")
	}
	return sub, nil
}

// Middleware rejects requests without a valid bearer token when the verifier
// is enabled, and stores the subject in the context otherwise
func (v *JWTVerifier) Middleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if !v.Enabled() || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Missing bearer token"})
			return
		}

		sub, err := v.ExtractSubject(header)
		if err != nil {
			logger.Debug("rejected bearer token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
			return
		}

		c.Set(SubjectKey, sub)
		c.Next()
	}
}
