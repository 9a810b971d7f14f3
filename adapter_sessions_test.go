package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	adapter := NewAdapter(db, SignupPolicy{})

	user, err := adapter.CreateUser(ctx, &User{Email: "jane@example.com"})
	require.NoError(t, err)

	expires := time.Now().Add(24 * time.Hour).UTC()
	created, err := adapter.CreateSession(ctx, &Session{
		SessionToken: "tok-1",
		UserID:       user.ID,
		Expires:      expires,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	session, sessionUser, err := adapter.GetSessionWithUser(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, sessionUser)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, user.Email, sessionUser.Email)

	later := expires.Add(24 * time.Hour)
	updated, err := adapter.UpdateSession(ctx, &Session{
		SessionToken: "tok-1",
		UserID:       user.ID,
		Expires:      later,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.WithinDuration(t, later, updated.Expires, time.Second)

	require.NoError(t, adapter.DeleteSession(ctx, "tok-1"))

	session, sessionUser, err = adapter.GetSessionWithUser(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Nil(t, sessionUser)
}

func TestUpdateSessionMissing(t *testing.T) {
	db := setupTestDB(t)
	adapter := NewAdapter(db, SignupPolicy{})

	updated, err := adapter.UpdateSession(context.Background(), &Session{
		SessionToken: "nope",
		Expires:      time.Now(),
	})
	require.NoError(t, err)
	assert.Nil(t, updated)
}
