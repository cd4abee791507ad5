package repository

import (
	"context"
	"testing"

	"github.com/amirphl/Kushinada-Labeling/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *models.Session {
	return &models.Session{
		ID: "s1",
		Images: []models.ImageItem{
			{ID: "i1", URL: "http://x/a.jpg", Filename: "a.jpg", Tags: []string{"pool"}},
			{ID: "i2", URL: "http://x/b.jpg", Filename: "b.jpg", Tags: []string{}},
		},
		TagDefinitions: []models.TagDefinition{
			{Tag: "pool", Title1: "Facilities"},
		},
	}
}

func TestInitializeAndCurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	original := testSession()
	require.NoError(t, repo.Initialize(ctx, original))

	// The store keeps its own copy: mutating the caller's session afterwards
	// must not leak into stored state.
	original.Images[0].Tags[0] = "mutated"
	original.TagDefinitions[0].Title1 = "mutated"

	current, err = repo.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "s1", current.ID)
	assert.Equal(t, []string{"pool"}, current.Images[0].Tags)
	assert.Equal(t, "Facilities", current.TagDefinitions[0].Title1)
}

func TestCurrentReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	require.NoError(t, repo.Initialize(ctx, testSession()))

	first, err := repo.Current(ctx)
	require.NoError(t, err)
	first.Images[0].Tags = append(first.Images[0].Tags, "smuggled")

	second, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pool"}, second.Images[0].Tags)
}

func TestToggleTag(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	require.NoError(t, repo.Initialize(ctx, testSession()))

	t.Run("Add", func(t *testing.T) {
		img, found, err := repo.ToggleTag(ctx, "i1", "lobby")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"pool", "lobby"}, img.Tags)
	})

	t.Run("RemovePreservesOrder", func(t *testing.T) {
		_, _, err := repo.ToggleTag(ctx, "i1", "room")
		require.NoError(t, err)

		img, found, err := repo.ToggleTag(ctx, "i1", "lobby")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"pool", "room"}, img.Tags)
	})

	t.Run("UnknownImageIsNoOp", func(t *testing.T) {
		img, found, err := repo.ToggleTag(ctx, "missing", "pool")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, img)
	})

	t.Run("ReturnedImageIsCopy", func(t *testing.T) {
		img, _, err := repo.ToggleTag(ctx, "i2", "pool")
		require.NoError(t, err)
		img.Tags[0] = "mutated"

		current, err := repo.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"pool"}, current.FindImage("i2").Tags)
	})
}

func TestToggleTagWithoutSession(t *testing.T) {
	repo := NewSessionRepository()
	img, found, err := repo.ToggleTag(context.Background(), "i1", "pool")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, img)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	require.NoError(t, repo.Initialize(ctx, testSession()))

	require.NoError(t, repo.Reset(ctx))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	// Resetting an already empty store stays a no-op.
	require.NoError(t, repo.Reset(ctx))
}
