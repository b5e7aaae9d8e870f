package middleware

import (
	"context"
	"coursemaster/models"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// TokenCookie is the httpOnly cookie set on login
const TokenCookie = "token"

// Claims is the JWT payload
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a token for the user that expires after expiry
func GenerateJWT(secret string, expiry time.Duration, userID uint, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates the signature and expiry of a token
func ParseJWT(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("invalid token payload")
	}
	return claims, nil
}

// AccountChecker loads the current account behind a token. It fails for
// deleted or deactivated users.
type AccountChecker interface {
	Active(ctx context.Context, userID uint) (*models.User, error)
}

// JWTMiddleware accepts a bearer token or the token cookie and stores
// userId and role in the request locals. The role is read from the account,
// so demotions and deactivations apply before the token expires.
func JWTMiddleware(secret string, accounts AccountChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
			}
			tokenString = strings.TrimSpace(authHeader[len("Bearer "):])
		} else {
			tokenString = c.Cookies(TokenCookie)
		}
		if tokenString == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}

		user, err := accounts.Active(c.UserContext(), claims.UserID)
		if err != nil {
			return err
		}

		c.Locals("userId", user.ID)
		c.Locals("role", user.Role)
		return c.Next()
	}
}
