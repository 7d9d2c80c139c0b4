package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware validates the bearer token and exposes the caller's identity.
// The raw token is kept in locals so downstream services can delegate calls
// to the backend under the caller's identity.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	userID := claims["user_id"]
	if userID == nil {
		// Backend-issued tokens carry the user id in the subject claim.
		userID = claims["sub"]
	}

	ctx.Locals("user_id", userID)
	ctx.Locals("access_token", tokenStr)
	return ctx.Next()
}

// UserID reads the authenticated user id set by JwtMiddleware.
func UserID(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

// AccessToken reads the raw bearer token set by JwtMiddleware.
func AccessToken(ctx *fiber.Ctx) string {
	if token, ok := ctx.Locals("access_token").(string); ok {
		return token
	}
	return ""
}
