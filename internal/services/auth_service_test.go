package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*AuthService, *fakeUserRepo, *fakeNotifier) {
	t.Helper()
	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	codes := NewTokenStore(5 * time.Minute)
	throttle := NewAttemptThrottle(10, 15*time.Minute)
	auth := NewAuthService(codes, throttle, users, notifier, "http://localhost:3000")
	return auth, users, notifier
}

func TestAuthService_LoginHappyPath(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	alice := users.add("tg-1", "alice")

	code, err := auth.RequestCode(alice)
	require.NoError(t, err)

	user, session, err := auth.Login("1.2.3.4", code)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	assert.Equal(t, alice.ID, session.UserID)
	assert.False(t, session.EstablishedAt.IsZero())

	// код одноразовый
	_, _, err = auth.Login("1.2.3.4", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestAuthService_InvalidCodeCountsTowardsThrottle(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	alice := users.add("tg-1", "alice")

	for i := 0; i < 10; i++ {
		_, _, err := auth.Login("9.9.9.9", "WRONG123")
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	// 11-я попытка с валидным кодом — всё равно отказ по троттлингу,
	// и код при этом не гасится
	code, err := auth.RequestCode(alice)
	require.NoError(t, err)
	_, _, err = auth.Login("9.9.9.9", code)
	assert.ErrorIs(t, err, ErrThrottled)

	// другой адрес этим кодом входит
	user, _, err := auth.Login("1.1.1.1", code)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
}

func TestAuthService_SuccessClearsFailures(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	alice := users.add("tg-1", "alice")

	for i := 0; i < 9; i++ {
		_, _, _ = auth.Login("1.2.3.4", "WRONG123")
	}

	code, err := auth.RequestCode(alice)
	require.NoError(t, err)
	_, _, err = auth.Login("1.2.3.4", code)
	require.NoError(t, err)

	// счётчик сброшен: девять новых неудач ещё не блокируют
	for i := 0; i < 9; i++ {
		_, _, err := auth.Login("1.2.3.4", "WRONG123")
		assert.ErrorIs(t, err, ErrInvalidCode)
	}
}

func TestAuthService_RedeemedCodeForMissingUser(t *testing.T) {
	auth, users, _ := newTestAuth(t)
	ghost := users.add("tg-ghost", "ghost")

	code, err := auth.RequestCode(ghost)
	require.NoError(t, err)

	// пользователь удалён между выдачей кода и входом
	users.mu.Lock()
	delete(users.users, ghost.ID)
	users.mu.Unlock()

	_, _, err = auth.Login("1.2.3.4", code)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestAuthService_RequestCodeNotifies(t *testing.T) {
	auth, users, notifier := newTestAuth(t)
	alice := users.add("tg-1", "alice")

	code, err := auth.RequestCode(alice)
	require.NoError(t, err)

	require.Len(t, notifier.authCodes, 1)
	assert.Equal(t, code, notifier.authCodes[0])
	assert.Equal(t, "http://localhost:3000/auth?code="+code, notifier.loginURLs[0])
}
