package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trulyapp/truly-backend/internal/identity"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": "soul@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newOptionalAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", OptionalJWT(testSecret), func(c *fiber.Ctx) error {
		userID, err := identity.GetUserID(c)
		if err != nil {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		return c.JSON(fiber.Map{"user_id": userID.String()})
	})
	return app
}

func TestOptionalJWTWithValidToken(t *testing.T) {
	app := newOptionalAuthApp()
	userID := uuid.New()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalJWTWithoutToken(t *testing.T) {
	app := newOptionalAuthApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalJWTWithGarbageToken(t *testing.T) {
	app := newOptionalAuthApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	// Invalid tokens degrade to anonymous, never reject.
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingToken(t *testing.T) {
	app := fiber.New()
	app.Get("/secure", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/secure", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestParseCSV(t *testing.T) {
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, parseCSV(" A@b.com , c@D.com ,"))
	assert.Nil(t, parseCSV(""))
}

func TestContains(t *testing.T) {
	list := []string{"one", "two"}
	assert.True(t, contains(list, "two"))
	assert.False(t, contains(list, "three"))
}
