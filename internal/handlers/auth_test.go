package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ckd-screening-server/internal/config"
	"ckd-screening-server/internal/models"
)

func authRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:                 "test_secret",
		JWTRefreshSecret:          "test_refresh_secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
		Environment:               "development",
	}
	h := NewAuthHandler(db, cfg)

	router := gin.New()
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	return mock, router
}

func TestRegister_DuplicateUsername(t *testing.T) {
	mock, router := authRouter(t)

	// Existing user found: the handler must bail out before any insert
	rows := sqlmock.NewRows([]string{"id", "username", "password"}).
		AddRow("uuid-1", "alice", "irrelevant")
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE username = (.+)").
		WithArgs("alice", 1).
		WillReturnRows(rows)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"password": "correcthorse",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists")
	// No INSERT was expected or performed
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Success(t *testing.T) {
	mock, router := authRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE username = (.+)").
		WithArgs("bob", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "bob",
		"password": "correcthorse",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "bob")
	assert.NotContains(t, w.Body.String(), "correcthorse")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	_, router := authRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "carol",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	mock, router := authRouter(t)

	stored := models.User{Username: "alice"}
	require.NoError(t, stored.SetPassword("the-real-password"))

	rows := sqlmock.NewRows([]string{"id", "username", "password"}).
		AddRow("uuid-1", "alice", stored.Password)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE username = (.+)").
		WithArgs("alice", 1).
		WillReturnRows(rows)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "a-wrong-password",
	})

	// No session is established and no token row is written
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "accessToken")
	assert.Empty(t, w.Result().Cookies())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownUser(t *testing.T) {
	mock, router := authRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE username = (.+)").
		WithArgs("mallory", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "mallory",
		"password": "whatever123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_Success(t *testing.T) {
	mock, router := authRouter(t)

	stored := models.User{Username: "alice"}
	require.NoError(t, stored.SetPassword("the-real-password"))

	rows := sqlmock.NewRows([]string{"id", "username", "password"}).
		AddRow("uuid-1", "alice", stored.Password)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE username = (.+)").
		WithArgs("alice", 1).
		WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `refresh_tokens`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "the-real-password",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accessToken")

	var refreshCookie bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, refreshCookie)
	assert.NoError(t, mock.ExpectationsWereMet())
}
