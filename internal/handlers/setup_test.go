package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fakeverse/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database and migrates all models.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Conversation{},
		&models.Message{},
	)
	require.NoError(t, err)

	return db
}

// createTestUser inserts a user with a bcrypt-hashed password.
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// newJSONContext builds an Echo context carrying a JSON body.
func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// newAuthedContext builds an Echo context with JWT claims for user already
// set, as the auth middleware would have done.
func newAuthedContext(e *echo.Echo, method, target, body string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONContext(e, method, target, body)
	c.Set("user", &models.JwtCustomClaims{UserID: user.ID, Username: user.Username})
	return c, rec
}

// httpStatus extracts the status code from a handler's returned error.
func httpStatus(t *testing.T, err error) int {
	t.Helper()

	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he.Code
}
