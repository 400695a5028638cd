package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/marquee/internal/signage"
)

// signs a token embedding adminID in the “sub” claim.
func GenerateJWT(adminID int, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": adminID,
		"exp": time.Now().Add(72 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// GenerateScreenToken signs a long-lived token for a registered screen.
func GenerateScreenToken(screenID int, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"screen_id": screenID,
		"exp":       time.Now().Add(365 * 24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// verifies the JWT and returns its claims.
func parseClaims(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func intClaim(claims jwt.MapClaims, name string) (int, error) {
	v, ok := claims[name].(float64)
	if !ok || v <= 0 {
		return 0, errors.New("invalid " + name + " claim")
	}
	return int(v), nil
}

// ScreenIdentity maps a bearer token to the screen it was issued to.
type ScreenIdentity interface {
	ScreenIDForToken(token string) (int, error)
}

// JWTScreenIdentity checks HS256 tokens carrying a screen_id claim.
type JWTScreenIdentity struct {
	Secret string
}

func (j JWTScreenIdentity) ScreenIDForToken(token string) (int, error) {
	claims, err := parseClaims(token, j.Secret)
	if err != nil {
		return 0, err
	}
	return intClaim(claims, "screen_id")
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth header"})
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid auth header"})
		return "", false
	}
	return parts[1], true
}

// checks “Authorization: Bearer <token>” for an admin token, sets
// “currentAdminID” and scopes the request context to that admin.
func JWTMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := parseClaims(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		adminID, err := intClaim(claims, "sub")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(currentAdminKey, adminID)
		c.Request = c.Request.WithContext(signage.WithAdmin(c.Request.Context(), adminID))
		c.Next()
	}
}

// ScreenAuth authenticates a screen bearer token and sets “currentScreenID”.
func ScreenAuth(identity ScreenIdentity) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		screenID, err := identity.ScreenIDForToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(currentScreenKey, screenID)
		c.Next()
	}
}
