package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTripCarriesRole(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken("test-secret", userID, "STAFF", time.Hour)
	require.NoError(t, err)

	parsedID, role, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	require.Equal(t, userID, parsedID)
	require.Equal(t, "STAFF", role)

	_, _, err = ParseToken("wrong-secret", token)
	require.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	token, err := GenerateToken("test-secret", uuid.New(), "CUSTOMER", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken("test-secret", token)
	require.Error(t, err)
}

func TestParsePaginationClamps(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return nil
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?page=0&limit=500", nil))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, 1, got.Page)
	require.Equal(t, maxPageSize, got.Limit)
	require.Equal(t, 0, got.Offset)
}

func TestPaginationEnvelope(t *testing.T) {
	env := Pagination{Page: 2, Limit: 20, Offset: 20}.Envelope(43)
	require.Equal(t, 2, env["current_page"])
	require.Equal(t, 20, env["items_per_page"])
	require.Equal(t, int64(43), env["total_items"])
}

func TestHashPasswordPolicy(t *testing.T) {
	_, err := HashPassword("short")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("long enough password")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "long enough password"))
	require.False(t, CheckPassword(hash, "something else"))
}
