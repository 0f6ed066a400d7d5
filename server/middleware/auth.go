package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillsenselab/asrd/errors"
	"github.com/skillsenselab/asrd/logger"
	"github.com/skillsenselab/asrd/util"
)

// AuthConfig configures request authentication. Two credential forms are
// accepted: a Bearer JWT signed with JWTSecret, or an API key in the
// X-API-Key header checked against the bcrypt APIKeyHash.
type AuthConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// JWTSecret is the HMAC signing secret for Bearer tokens.
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	// APIKeyHash is the bcrypt hash of the accepted API key.
	APIKeyHash string `yaml:"api_key_hash" mapstructure:"api_key_hash"`
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string `yaml:"skip_paths" mapstructure:"skip_paths"`
}

// Auth returns a Gin middleware enforcing the configured credentials.
// With Enabled false it is a no-op passthrough.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	log := logger.WithComponent("auth")
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		if cfg.APIKeyHash != "" {
			if key := c.GetHeader("X-API-Key"); key != "" {
				if bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(key)) == nil {
					c.Next()
					return
				}
				log.Warn("API key rejected", logger.Fields("key", util.MaskSecret(key, 4)))
				abortUnauthorized(c, "Invalid API key")
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := validateJWT(parts[1], cfg.JWTSecret)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}
		for key, value := range claims {
			c.Set(key, value)
		}
		c.Next()
	}
}

// validateJWT parses and verifies an HMAC-signed token.
func validateJWT(token, secret string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func abortUnauthorized(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errors.Unauthorized(reason).ToResponse())
}
