package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
)

func TestStoreNotifiesListenersInOrder(t *testing.T) {
	store := NewStore(loadedModel(t, []catalog.Product{product("1", "Tee", "Acme", "10", "c-root")}, treeCategories()))

	var calls []string
	store.Subscribe(func(m Model) { calls = append(calls, "first:"+m.State.SearchQuery) })
	store.Subscribe(func(m Model) { calls = append(calls, "second:"+m.State.SearchQuery) })

	next, err := store.Dispatch(UpdateField{Key: FieldSearchQuery, Value: "tee"})
	require.NoError(t, err)
	assert.Equal(t, "tee", next.State.SearchQuery)
	assert.Equal(t, "tee", store.Model().State.SearchQuery)
	assert.Equal(t, []string{"first:tee", "second:tee"}, calls)
}

func TestStoreUnsubscribe(t *testing.T) {
	store := NewStore(NewModel())

	count := 0
	unsubscribe := store.Subscribe(func(Model) { count++ })
	_, err := store.Dispatch(ClearFilters{})
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()
	_, err = store.Dispatch(ClearFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStoreFailedDispatchCommitsNothing(t *testing.T) {
	store := NewStore(NewModel())
	_, err := store.Dispatch(UpdateField{Key: FieldMinRating, Value: 3})
	require.NoError(t, err)

	notified := false
	store.Subscribe(func(Model) { notified = true })

	current, err := store.Dispatch(UpdateField{Key: FieldMinRating, Value: "five"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.False(t, notified)
	assert.Equal(t, 3, current.State.MinRating)
	assert.Equal(t, 3, store.Model().State.MinRating)
}

func TestStoreDispatchWithRunsHookBeforeListeners(t *testing.T) {
	store := NewStore(NewModel())

	var calls []string
	store.Subscribe(func(m Model) { calls = append(calls, "listener:"+m.State.SearchQuery) })

	_, err := store.DispatchWith(UpdateField{Key: FieldSearchQuery, Value: "boot"}, func(m Model) {
		calls = append(calls, "hook:"+m.State.SearchQuery)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hook:boot", "listener:boot"}, calls)

	calls = nil
	_, err = store.DispatchWith(UpdateField{Key: FieldMinRating, Value: "five"}, func(Model) {
		calls = append(calls, "hook")
	})
	require.Error(t, err)
	assert.Empty(t, calls)
}
