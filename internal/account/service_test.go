package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accounts-core/internal/account"
	"accounts-core/internal/account/memstore"
	"accounts-core/internal/token"
)

func newTestService(t *testing.T) (*account.Service, *token.Service, *memstore.InMemory) {
	t.Helper()
	store := memstore.New()
	tokens := token.NewService(token.Config{Secret: []byte("test-secret")}, store)
	svc := account.NewService(store, token.BcryptHasher{Cost: 4}, tokens)
	return svc, tokens, store
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, account.CreateInput{Email: "a@x.com", Username: "a", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "users", u.Group, "group defaults when omitted")
	assert.True(t, u.IsActive)
	assert.False(t, u.IsSuperuser)
}

func TestRegister_NeverSuperuser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	u, err := svc.Register(context.Background(), account.CreateInput{
		Email: "a@x.com", Password: "p1", IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.False(t, u.IsSuperuser, "registration must not honor the superuser flag")
}

func TestRegister_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, account.CreateInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	_, err = svc.Register(ctx, account.CreateInput{Email: "a@x.com", Password: "p2"})
	assert.ErrorIs(t, err, account.ErrEmailTaken)
}

func TestCreate_SuperuserFlag(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	u, err := svc.Create(context.Background(), account.CreateInput{
		Email: "root@x.com", Username: "root", Group: "admins", Password: "p1", IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.Equal(t, "admins", u.Group)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	svc, _, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, account.CreateInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// unknown email and wrong password are indistinguishable
	_, err = svc.Authenticate(ctx, "nobody@x.com", "p1")
	assert.ErrorIs(t, err, account.ErrAuthenticationDenied)
	_, err = svc.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, account.ErrAuthenticationDenied)

	// deactivated accounts are denied too
	store.SetActive(u.ID, false)
	_, err = svc.Authenticate(ctx, "a@x.com", "p1")
	assert.ErrorIs(t, err, account.ErrAuthenticationDenied)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, tokens, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, account.CreateInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	// unknown email is an error, unlike a bad password
	_, _, err = svc.Login(ctx, "nobody@x.com", "p1")
	assert.ErrorIs(t, err, account.ErrNotFound)

	// bad password is the non-exceptional rejection path
	tok, ok, err := svc.Login(ctx, "a@x.com", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tok)

	tok, ok, err = svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, tokens.Verify(ctx, tok))
}

func TestVerify_DeactivatedUser(t *testing.T) {
	t.Parallel()

	svc, tokens, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, account.CreateInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	tok, ok, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, tokens.Verify(ctx, tok))

	// deactivating the user invalidates their outstanding tokens even
	// though the row still exists
	store.SetActive(u.ID, false)
	assert.False(t, tokens.Verify(ctx, tok))

	store.SetActive(u.ID, true)
	assert.True(t, tokens.Verify(ctx, tok), "reactivation makes the unexpired token usable again")
}

func TestList_Pagination(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	emails := []string{"u1@x.com", "u2@x.com", "u3@x.com", "u4@x.com", "u5@x.com"}
	for _, e := range emails {
		_, err := svc.Register(ctx, account.CreateInput{Email: e, Password: "p"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].ID)
	assert.Equal(t, int64(3), page[1].ID)

	empty, err := svc.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	// negative bounds degrade to an empty page instead of panicking
	empty, err = svc.List(ctx, -1, -1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := svc.List(ctx, -5, 100)
	require.NoError(t, err)
	assert.Len(t, all, len(emails))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, account.CreateInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))

	_, err = svc.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)

	// deleting an absent row is a store-level failure
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), account.ErrDeleteFailed)
}

// TestLifecycleScenario walks the register -> login -> verify -> self-delete
// flow end to end at the service/policy level.
func TestLifecycleScenario(t *testing.T) {
	t.Parallel()

	svc, tokens, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, account.CreateInput{
		Email: "a@x.com", Username: "a", Group: "users", Password: "p1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	tok, ok, err := svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, tokens.Verify(ctx, tok))

	// delete self via the token, no explicit target
	claims, err := tokens.Decode(tok)
	require.NoError(t, err)
	target, err := token.ResolveDeleteTarget(claims, nil)
	require.NoError(t, err)
	assert.Equal(t, u.ID, target)
	require.NoError(t, svc.Delete(ctx, target))

	_, err = svc.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)

	// the outstanding token no longer verifies
	assert.False(t, tokens.Verify(ctx, tok))
}
