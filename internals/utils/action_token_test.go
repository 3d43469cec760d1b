package utils

import (
	"fmt"
	"testing"
	"time"

	"gin-shop/internals/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Name: "Jordan", Email: "jordan@example.com", Active: true}
	require.NoError(t, user.SetPassword("Abcdef1!"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestActionTokenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db)
	mgr := NewActionTokenManager(db, "test-secret", zap.NewNop())

	token, err := mgr.Issue(user.ID, "Reset_Password", 0)
	require.NoError(t, err)

	got, action := mgr.Verify(token)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	// action is lowercased at issue time
	assert.Equal(t, ActionResetPassword, action)
}

func TestActionTokenExpired(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db)
	mgr := NewActionTokenManager(db, "test-secret", zap.NewNop())

	token, err := mgr.Issue(user.ID, ActionVerifyEmail, -1*time.Minute)
	require.NoError(t, err)

	got, action := mgr.Verify(token)
	assert.Nil(t, got)
	assert.Empty(t, action)
}

func TestActionTokenWrongKey(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db)
	issuer := NewActionTokenManager(db, "one-secret", zap.NewNop())
	verifier := NewActionTokenManager(db, "another-secret", zap.NewNop())

	token, err := issuer.Issue(user.ID, ActionVerifyEmail, 0)
	require.NoError(t, err)

	got, action := verifier.Verify(token)
	assert.Nil(t, got)
	assert.Empty(t, action)
}

func TestActionTokenTruncated(t *testing.T) {
	db := openTestDB(t)
	user := newTestUser(t, db)
	mgr := NewActionTokenManager(db, "test-secret", zap.NewNop())

	token, err := mgr.Issue(user.ID, ActionVerifyEmail, 0)
	require.NoError(t, err)

	got, action := mgr.Verify(token[:len(token)/2])
	assert.Nil(t, got)
	assert.Empty(t, action)

	got, action = mgr.Verify("not-a-token-at-all")
	assert.Nil(t, got)
	assert.Empty(t, action)
}

func TestActionTokenUnknownUser(t *testing.T) {
	db := openTestDB(t)
	mgr := NewActionTokenManager(db, "test-secret", zap.NewNop())

	token, err := mgr.Issue(99999, ActionVerifyEmail, 0)
	require.NoError(t, err)

	got, action := mgr.Verify(token)
	assert.Nil(t, got)
	assert.Empty(t, action)
}
