package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gin-shop/internals/initializers"
	"gin-shop/internals/models"
	"gin-shop/internals/routes"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

// setupServer wires a full router against a throwaway in-memory
// database, with SMTP pointed at a closed local port so delivery
// fails fast instead of reaching the network.
func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	t.Setenv("SECRET_KEY", "unit-test-signing-secret")
	t.Setenv("ENCRYPTION_KEY", testEncryptionKey)
	t.Setenv("SECURE_COOKIE", "false")
	t.Setenv("SMTP_HOST", "127.0.0.1")
	t.Setenv("SMTP_PORT", "1")
	t.Setenv("SMTP_USER", "noreply@example.com")
	t.Setenv("SMTP_PASSWORD", "nope")
	t.Setenv("APP_BASE_URL", "http://localhost:8080")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := initializers.ConnectToDB(dsn)
	require.NoError(t, err)
	require.NoError(t, initializers.SyncDatabase(db))

	return routes.SetupRouter(db, zap.NewNop()), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// createVerifiedUser inserts an active, verified account directly
func createVerifiedUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	user := models.User{
		Name:          "Test User",
		Email:         email,
		Active:        true,
		EmailVerified: true,
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// loginCookies performs a password login and returns the session cookies
func loginCookies(t *testing.T, r *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}
