package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFromRow(t *testing.T) {
	u, err := UserFromRow(map[string]any{
		"id":         int64(7),
		"username":   "amy",
		"email":      []byte("amy@example.com"),
		"created_at": "1700000000",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "amy", u.Username)
	assert.Equal(t, "amy@example.com", u.Email)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), u.CreatedAt)
}

func TestUserFromRowBadID(t *testing.T) {
	_, err := UserFromRow(map[string]any{"id": "seven"})
	assert.Error(t, err)

	_, err = UserFromRow(map[string]any{"id": true})
	assert.Error(t, err)
}

func TestUserFields(t *testing.T) {
	u := User{Username: "bob", Email: "b@x", CreatedAt: time.Unix(42, 0)}

	assert.Equal(t, map[string]any{
		"username":   "bob",
		"email":      "b@x",
		"created_at": int64(42),
	}, u.Fields())
}
