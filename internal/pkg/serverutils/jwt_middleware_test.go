package serverutils

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func protectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.SendString(UserID(ctx))
	})
	return app
}

func TestJwtMiddlewareAcceptsHmacToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	resp, err := protectedApp().Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "user-1" {
		t.Fatalf("user id = %q, want user-1", body)
	}
}

func TestJwtMiddlewareRejectsUnsignedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	resp, err := protectedApp().Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: alg=none token must not pass", resp.StatusCode)
	}
}

func TestJwtMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	resp, err := protectedApp().Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
