package auth_test

import (
	"testing"
	"time"

	"github.com/racketclub/courtside/internal/auth"
	"github.com/racketclub/courtside/internal/club"
	"github.com/racketclub/courtside/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	require.NoError(t, auth.Init())

	token, err := auth.CreateSession(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	playerID, err := auth.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), playerID)
}

func TestVerifySessionRejectsGarbage(t *testing.T) {
	require.NoError(t, auth.Init())

	_, err := auth.VerifySession("not-a-token")
	assert.Error(t, err)
}

func TestVerifySessionRejectsTokenFromOtherKey(t *testing.T) {
	require.NoError(t, auth.Init())
	token, err := auth.CreateSession(1)
	require.NoError(t, err)

	// Re-initializing rotates the key pair; old tokens must stop verifying.
	require.NoError(t, auth.Init())
	_, err = auth.VerifySession(token)
	assert.Error(t, err)
}

func TestCreateHashAndCompare(t *testing.T) {
	hash, err := auth.CreateHash("123456")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := auth.CompareCodeAndHash("123456", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.CompareCodeAndHash("654321", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	_, err := auth.CompareCodeAndHash("123456", "nonsense")
	assert.ErrorIs(t, err, auth.ErrInvalidHash)
}

func setupOTP(t *testing.T) (*auth.Store, int64, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	clubStore := club.New(db)
	p, err := clubStore.CreatePlayer("Alice", 5, nil)
	require.NoError(t, err)

	return auth.NewStore(db), p.ID, teardown
}

func TestIssueAndVerifyCode(t *testing.T) {
	store, playerID, teardown := setupOTP(t)
	defer teardown()

	code, expiresAt, err := store.Issue(playerID)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.True(t, expiresAt.After(time.Now()))

	require.NoError(t, store.Verify(playerID, code))
}

func TestVerifyWrongCode(t *testing.T) {
	store, playerID, teardown := setupOTP(t)
	defer teardown()

	code, _, err := store.Issue(playerID)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, store.Verify(playerID, wrong), auth.ErrInvalidCode)
}

func TestCodeIsSingleUse(t *testing.T) {
	store, playerID, teardown := setupOTP(t)
	defer teardown()

	code, _, err := store.Issue(playerID)
	require.NoError(t, err)

	require.NoError(t, store.Verify(playerID, code))
	assert.ErrorIs(t, store.Verify(playerID, code), auth.ErrInvalidCode)
}

func TestNewCodeSupersedesOldOne(t *testing.T) {
	store, playerID, teardown := setupOTP(t)
	defer teardown()

	oldCode, _, err := store.Issue(playerID)
	require.NoError(t, err)
	newCode, _, err := store.Issue(playerID)
	require.NoError(t, err)

	if oldCode != newCode {
		assert.ErrorIs(t, store.Verify(playerID, oldCode), auth.ErrInvalidCode)
	}
	require.NoError(t, store.Verify(playerID, newCode))
}

func TestVerifyForUnknownPlayer(t *testing.T) {
	store, _, teardown := setupOTP(t)
	defer teardown()

	assert.ErrorIs(t, store.Verify(999, "123456"), auth.ErrInvalidCode)
}
