package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/opsboard/internal/database"
)

func TestTokenStore_RoundTrip(t *testing.T) {
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	ctx := context.Background()

	store := database.NewTokenStore(db, "http://backend")
	other := database.NewTokenStore(db, "http://other")

	token, username, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
	require.Empty(t, username)

	require.NoError(t, store.Save(ctx, "jwt-1", "alice"))
	require.NoError(t, store.Save(ctx, "jwt-2", "carol"))
	require.NoError(t, other.Save(ctx, "jwt-other", "bob"))

	token, username, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "jwt-2", token)
	require.Equal(t, "carol", username)

	require.NoError(t, store.Clear(ctx))

	token, username, err = store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
	require.Empty(t, username)

	token, username, err = other.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "jwt-other", token)
	require.Equal(t, "bob", username)
}

func TestActionLog_Recent(t *testing.T) {
	type tc struct {
		name      string
		targetKey string
		limit     int
		wantIDs   []string
	}

	cases := []tc{
		{
			name:    "all targets newest first",
			wantIDs: []string{"c", "b", "a"},
		},
		{
			name:      "single target",
			targetKey: "prod",
			wantIDs:   []string{"c", "a"},
		},
		{
			name:    "limited",
			limit:   1,
			wantIDs: []string{"c"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			db, err := database.NewSQLiteDB(":memory:")
			require.NoError(t, err)
			ctx := context.Background()
			log := database.NewActionLog(db)

			require.NoError(t, log.Save(ctx, &database.ActionRecord{ID: "a", Kind: "restart", AppName: "billing", TargetKey: "prod", Outcome: "success", RequestedAt: 100}))
			require.NoError(t, log.Save(ctx, &database.ActionRecord{ID: "b", Kind: "sync", AppName: "ledger", TargetKey: "test", Outcome: "error", RequestedAt: 200}))
			require.NoError(t, log.Save(ctx, &database.ActionRecord{ID: "c", Kind: "sync", AppName: "billing", TargetKey: "prod", Outcome: "success", RequestedAt: 300}))

			records, err := log.Recent(ctx, c.targetKey, c.limit)
			require.NoError(t, err)

			var ids []string
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			require.Equal(t, c.wantIDs, ids)
		})
	}
}
