//go:build integration_test || all_tests

package auth

import (
	"testing"
	"time"

	"github.com/2beens/fitcoach/internal/coaching/roster"
	testingpkg "github.com/2beens/fitcoach/pkg/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Redis_SessionLifecycle(t *testing.T) {
	ctx, rdb := testingpkg.GetRedisClientAndCtx(t)

	service := NewAuthService(&Coach{Email: "coach@fitcoach.local"}, newUsersRepoStub(), testJWTSecret, time.Hour, rdb)
	identity := Identity{UserID: "c1", Email: "c1@example.com", Role: roster.RoleClient}

	token, err := service.Login(ctx, identity, time.Now())
	require.NoError(t, err)

	members, err := rdb.SMembers(ctx, tokensSetKey).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)

	ttl, err := rdb.TTL(ctx, sessionKeyPrefix+members[0]).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	got, err := service.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, identity, *got)

	loggedOut, err := service.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	_, err = service.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	loggedOut, err = service.Logout(ctx, token)
	require.NoError(t, err)
	assert.False(t, loggedOut)

	setSize, err := rdb.SCard(ctx, tokensSetKey).Result()
	require.NoError(t, err)
	assert.Zero(t, setSize)
}

func TestService_Redis_ScanAndClean(t *testing.T) {
	ctx, rdb := testingpkg.GetRedisClientAndCtx(t)

	service := NewAuthService(&Coach{Email: "coach@fitcoach.local"}, newUsersRepoStub(), testJWTSecret, time.Hour, rdb)
	identity := Identity{UserID: "c1", Email: "c1@example.com", Role: roster.RoleClient}

	fresh, err := service.Login(ctx, identity, time.Now())
	require.NoError(t, err)

	// a set entry whose key redis already expired, and one created too long ago
	require.NoError(t, rdb.SAdd(ctx, tokensSetKey, "gone").Err())
	require.NoError(t, rdb.Set(ctx, sessionKeyPrefix+"old", time.Now().Add(-2*time.Hour).Unix(), time.Hour).Err())
	require.NoError(t, rdb.SAdd(ctx, tokensSetKey, "old").Err())

	service.ScanAndClean(ctx)

	members, err := rdb.SMembers(ctx, tokensSetKey).Result()
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.NotContains(t, members, "gone")
	assert.NotContains(t, members, "old")

	exists, err := rdb.Exists(ctx, sessionKeyPrefix+"old").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	_, err = service.Authenticate(ctx, fresh)
	assert.NoError(t, err)
}
