package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

const authUserIDKey = "auth_user_id"

// generateJWT issues a token carrying the player id.
func generateJWT(playerID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"player_id": playerID,
		"exp":       time.Now().Add(time.Hour * 72).Unix(),
		"iss":       "aegischat-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validateJWT checks the signature and returns the player id claim.
func validateJWT(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	playerID, ok := claims["player_id"].(string)
	if !ok || playerID == "" {
		return "", errors.New("missing player_id claim")
	}
	return playerID, nil
}

// GetToken issues a JWT for the given player id, generating an id when
// none is supplied. The real identity service fronts this in production.
func (h *Handler) GetToken(c *gin.Context) {
	playerID := c.Query("playerId")
	if playerID == "" {
		playerID = uuid.New().String()
	}

	token, err := generateJWT(playerID, h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "player_id": playerID})
}

// AuthRequired extracts and verifies the bearer token, storing the caller
// id in the request context.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		playerID, err := validateJWT(strings.TrimPrefix(authHeader, "Bearer "), h.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}

		c.Set(authUserIDKey, playerID)
		c.Next()
	}
}

// callerID returns the authenticated player id set by AuthRequired.
func callerID(c *gin.Context) string {
	return c.GetString(authUserIDKey)
}
