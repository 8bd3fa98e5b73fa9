package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ursais/web-api/pkg/endpoint"
)

func demoEndpoint(route string) *endpoint.Endpoint {
	return &endpoint.Endpoint{
		Name:        "demo",
		Route:       route,
		ExecMode:    endpoint.ModeCode,
		CodeSnippet: "result := {payload: 1}",
		AuthType:    endpoint.AuthUser,
	}
}

func TestCreateNormalizesAndValidates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	t.Run("route gains leading slash", func(t *testing.T) {
		e := demoEndpoint("orders/sync")
		require.NoError(t, repo.Create(ctx, e))
		assert.Equal(t, "/orders/sync", e.Route)
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	})

	t.Run("invalid record is rejected", func(t *testing.T) {
		e := demoEndpoint("/pub")
		e.AuthType = endpoint.AuthPublic // missing exec_as_user
		err := repo.Create(ctx, e)
		require.Error(t, err)
		assert.True(t, endpoint.IsBadRequest(err))
	})

	t.Run("duplicate route is rejected", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, demoEndpoint("/unique")))
		err := repo.Create(ctx, demoEndpoint("/unique"))
		require.Error(t, err)
		assert.True(t, endpoint.IsBadRequest(err))
	})
}

func TestFindByRoute(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := demoEndpoint("/hello")
	first.Name = "first"
	require.NoError(t, repo.Create(ctx, first))

	t.Run("returns the record", func(t *testing.T) {
		got, err := repo.FindByRoute(ctx, "/hello")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "first", got.Name)
	})

	t.Run("absent route is nil without error", func(t *testing.T) {
		got, err := repo.FindByRoute(ctx, "/nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	e := demoEndpoint("/orders")
	require.NoError(t, repo.Create(ctx, e))

	e.Name = "renamed"
	require.NoError(t, repo.Update(ctx, e))
	got, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	t.Run("update of unknown id", func(t *testing.T) {
		ghost := demoEndpoint("/ghost")
		ghost.ID = "missing"
		assert.ErrorIs(t, repo.Update(ctx, ghost), ErrNotFound)
	})

	require.NoError(t, repo.Delete(ctx, e.ID))
	_, err = repo.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	src := demoEndpoint("/orders")
	require.NoError(t, repo.Create(ctx, src))

	dup, err := repo.Duplicate(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "/orders"+endpoint.CopySuffix, dup.Route)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, src.CodeSnippet, dup.CodeSnippet)

	t.Run("duplicate of a duplicate collides", func(t *testing.T) {
		_, err := repo.Duplicate(ctx, src.ID)
		require.Error(t, err, "the copy route already exists")
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.Duplicate(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for _, r := range []string{"/a", "/b", "/c"} {
		require.NoError(t, repo.Create(ctx, demoEndpoint(r)))
	}
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "/a", list[0].Route)
	assert.Equal(t, "/c", list[2].Route)
}
