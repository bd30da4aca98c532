package account

import (
	"testing"

	"github.com/berea-app/core/internal/models"
	"github.com/berea-app/core/internal/pkg/session"
	"github.com/berea-app/core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewService(db)

	user, err := svc.Register("Reader@Example.COM", "Reader", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.Password, "password must be hashed")

	token, got, err := svc.Login("reader@example.com", "correct-horse", "127.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.LastLoginTime)

	_, _, err = svc.Login("reader@example.com", "wrong-password", "127.0.0.1", "test-agent")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "correct-horse", "127.0.0.1", "test-agent")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewService(db)

	_, err := svc.Register("reader@example.com", "First", "correct-horse")
	require.NoError(t, err)

	_, err = svc.Register("READER@example.com", "Second", "battery-staple")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogoutRevokesSession(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewService(db)

	user, err := svc.Register("reader@example.com", "Reader", "correct-horse")
	require.NoError(t, err)
	_, _, err = svc.Login("reader@example.com", "correct-horse", "127.0.0.1", "test-agent")
	require.NoError(t, err)

	var sess models.UserSession
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sess).Error)

	active, err := session.IsActive(db, user.ID, sess.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, svc.Logout(user.ID, sess.ID))

	active, err = session.IsActive(db, user.ID, sess.ID)
	require.NoError(t, err)
	assert.False(t, active)
}
