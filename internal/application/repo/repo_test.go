package repo

import (
	"errors"
	"testing"

	"community/internal/application/entity"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfilePatchQuery(t *testing.T) {
	patch := &entity.ProfilePatch{
		DisplayName: "Jamie",
		Location:    "Oslo",
	}

	query, args := createProfilePatchQuery("user-1", patch)

	assert.Equal(t, "UPDATE profiles SET display_name = $1, location = $2, updated_at = now() WHERE user_id = $3", query)
	require.Len(t, args, 3)
	assert.Equal(t, "Jamie", args[0])
	assert.Equal(t, "Oslo", args[1])
	assert.Equal(t, "user-1", args[2])
}

func TestCreateProfilePatchQuery_AllFields(t *testing.T) {
	patch := &entity.ProfilePatch{
		DisplayName:    "Jamie",
		Bio:            "bio",
		Location:       "Oslo",
		Website:        "https://example.test",
		ProfilePicture: "https://example.test/p.png",
	}

	query, args := createProfilePatchQuery("user-1", patch)

	assert.Contains(t, query, "display_name = $1")
	assert.Contains(t, query, "profile_picture = $5")
	assert.Contains(t, query, "WHERE user_id = $6")
	assert.Len(t, args, 6)
}

func TestCreateProfilePatchQuery_Empty(t *testing.T) {
	query, args := createProfilePatchQuery("user-1", &entity.ProfilePatch{})

	assert.Empty(t, query)
	assert.Nil(t, args)
}

func TestCreateEventPatchQuery(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	patch := &entity.Event{
		ID:       id,
		Title:    "Meetup",
		StartsAt: "2026-09-01T18:00:00Z",
	}

	query, args := createEventPatchQuery(patch)

	assert.Equal(t, "UPDATE events SET title = $1, starts_at = $2, updated_at = now() WHERE id = $3", query)
	require.Len(t, args, 3)
	assert.Equal(t, id, args[2])
}

func TestCreateEventPatchQuery_Empty(t *testing.T) {
	query, args := createEventPatchQuery(&entity.Event{ID: uuid.Must(uuid.NewV4())})

	assert.Empty(t, query)
	assert.Nil(t, args)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicateKeyError(errors.New("boom")))
	assert.False(t, isDuplicateKeyError(nil))
}
