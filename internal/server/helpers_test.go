package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialfeed/internal/config"
	"socialfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	return setupTestServerRedis(t, nil)
}

func setupTestServerRedis(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Feed{},
		&models.FeedImage{},
		&models.Comment{},
		&models.FeedReport{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		JWTSecret: "test-secret-for-handlers",
		Env:       "test",
		MediaDir:  t.TempDir(),
	}

	s := NewServerWithDeps(cfg, db, rdb)
	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func createHandlerTestUser(t *testing.T, s *Server, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Passw0rd"+username), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hashed)}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func bearerFor(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"feedId", "feed ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parsePagination ---

func paginationTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p, err := parsePagination(c, 20)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})
	return app
}

func TestParsePagination_Defaults(t *testing.T) {
	app := paginationTestApp()

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]float64
	decodeJSON(t, resp, &body)
	assert.Equal(t, float64(20), body["limit"])
	assert.Equal(t, float64(0), body["offset"])
}

func TestParsePagination_ClampsLimit(t *testing.T) {
	app := paginationTestApp()

	req := httptest.NewRequest(http.MethodGet, "/items?limit=5000&offset=40", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]float64
	decodeJSON(t, resp, &body)
	assert.Equal(t, float64(maxPaginationLimit), body["limit"])
	assert.Equal(t, float64(40), body["offset"])
}

func TestParsePagination_RejectsInvalidValues(t *testing.T) {
	app := paginationTestApp()

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric limit", "limit=abc"},
		{"non-numeric offset", "offset=abc"},
		{"zero limit", "limit=0"},
		{"negative limit", "limit=-5"},
		{"negative offset", "offset=-3"},
		{"fractional limit", "limit=1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/items?"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body models.ErrorResponse
			decodeJSON(t, resp, &body)
			assert.Equal(t, "Invalid pagination parameters", body.Error)
		})
	}
}
