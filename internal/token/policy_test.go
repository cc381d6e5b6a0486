package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireValidToken(t *testing.T) {
	t.Parallel()

	store := &fakeStore{ids: map[int64]bool{1: true}}
	svc := testService(store)
	ctx := context.Background()

	tok, err := svc.Issue(testUser(), time.Hour)
	require.NoError(t, err)

	assert.NoError(t, svc.RequireValidToken(ctx, tok))
	assert.ErrorIs(t, svc.RequireValidToken(ctx, "garbage"), ErrForbidden)

	store.ids[1] = false
	assert.ErrorIs(t, svc.RequireValidToken(ctx, tok), ErrForbidden)
}

func TestRequireSuperuser(t *testing.T) {
	t.Parallel()

	assert.NoError(t, RequireSuperuser(&Claims{IsSuperuser: true}))
	assert.ErrorIs(t, RequireSuperuser(&Claims{IsSuperuser: false}), ErrForbidden)
}

func TestResolveDeleteTarget(t *testing.T) {
	t.Parallel()

	id := func(v int64) *int64 { return &v }

	tests := []struct {
		name    string
		claims  *Claims
		target  *int64
		want    int64
		wantErr bool
	}{
		{name: "no target means self", claims: &Claims{UserID: 7}, target: nil, want: 7},
		{name: "no target means self even for superuser", claims: &Claims{UserID: 7, IsSuperuser: true}, target: nil, want: 7},
		{name: "own id without superuser", claims: &Claims{UserID: 7}, target: id(7), want: 7},
		{name: "other id without superuser", claims: &Claims{UserID: 7}, target: id(8), wantErr: true},
		{name: "other id with superuser", claims: &Claims{UserID: 7, IsSuperuser: true}, target: id(8), want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDeleteTarget(tt.claims, tt.target)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrForbidden)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
