package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceStore_PutAndGet(t *testing.T) {
	store := NewResourceStore(0)

	store.PutProduct(Product{ID: "P1", Name: "Shirt"})
	store.PutLook(Look{ID: "L1", Title: "Look L1", ProductIDs: []string{"P1"}})

	p, ok := store.Product("P1")
	require.True(t, ok)
	assert.Equal(t, "Shirt", p.Name)

	l, ok := store.Look("L1")
	require.True(t, ok)
	assert.Equal(t, []string{"P1"}, l.ProductIDs)

	_, ok = store.Product("P2")
	assert.False(t, ok)
	_, ok = store.Look("L2")
	assert.False(t, ok)
}

func TestResourceStore_LastWriteWins(t *testing.T) {
	store := NewResourceStore(0)

	store.PutProduct(Product{ID: "P1", Name: "Shirt"})
	store.PutProduct(Product{ID: "P1", Name: "Renamed Shirt"})

	p, ok := store.Product("P1")
	require.True(t, ok)
	assert.Equal(t, "Renamed Shirt", p.Name)
	assert.Equal(t, 1, store.Stats().ProductCount)
}

func TestResourceStore_ColorVariantIdentity(t *testing.T) {
	store := NewResourceStore(0)

	store.PutProduct(Product{ID: "P1", ColorID: "red", Name: "Red Shirt"})
	store.PutProduct(Product{ID: "P1", ColorID: "blue", Name: "Blue Shirt"})

	red, ok := store.Product("P1:red")
	require.True(t, ok)
	assert.Equal(t, "Red Shirt", red.Name)

	blue, ok := store.Product("P1:blue")
	require.True(t, ok)
	assert.Equal(t, "Blue Shirt", blue.Name)
	assert.Equal(t, 2, store.Stats().ProductCount)
}

func TestResourceStore_IgnoresEmptyIdentifiers(t *testing.T) {
	store := NewResourceStore(0)

	store.PutProduct(Product{Name: "no id"})
	store.PutLook(Look{Title: "no id"})

	assert.Equal(t, 0, store.Stats().ProductCount)
	assert.Equal(t, 0, store.Stats().LookCount)
}

func TestResourceStore_SortedListings(t *testing.T) {
	store := NewResourceStore(0)

	store.PutProduct(Product{ID: "P3"})
	store.PutProduct(Product{ID: "P1"})
	store.PutProduct(Product{ID: "P2"})

	products := store.Products()
	require.Len(t, products, 3)
	assert.Equal(t, "P1", products[0].ID)
	assert.Equal(t, "P2", products[1].ID)
	assert.Equal(t, "P3", products[2].ID)
}

func TestResourceStore_BoundEvictsOldestInserted(t *testing.T) {
	store := NewResourceStore(2)

	store.PutProduct(Product{ID: "P1"})
	store.PutProduct(Product{ID: "P2"})
	store.PutProduct(Product{ID: "P3"})

	_, ok := store.Product("P1")
	assert.False(t, ok, "oldest inserted entry should be evicted")
	_, ok = store.Product("P2")
	assert.True(t, ok)
	_, ok = store.Product("P3")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Stats().ProductCount)
}

func TestResourceStore_OverwriteDoesNotEvict(t *testing.T) {
	store := NewResourceStore(2)

	store.PutProduct(Product{ID: "P1"})
	store.PutProduct(Product{ID: "P2"})
	store.PutProduct(Product{ID: "P1", Name: "updated"})

	assert.Equal(t, 2, store.Stats().ProductCount)
	p, ok := store.Product("P1")
	require.True(t, ok)
	assert.Equal(t, "updated", p.Name)
}
