package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
)

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "RM-1", []byte("first")))
	require.NoError(t, s.Put(ctx, "RM-1", []byte("second")))

	got, err := s.Get(ctx, "RM-1")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
	assert.Equal(t, 1, s.Len())
}

func TestStore_GetMissing(t *testing.T) {
	_, err := NewStore().Get(context.Background(), "absent-key")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	value := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestAnchorRepository_ListPending(t *testing.T) {
	ctx := context.Background()
	r := NewAnchorRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := []*models.AnchorEntry{
		{RecordRef: "B", Status: models.AnchorEntryPending, UpdatedAt: base.Add(2 * time.Minute)},
		{RecordRef: "A", Status: models.AnchorEntryPending, UpdatedAt: base.Add(time.Minute)},
		{RecordRef: "C", Status: models.AnchorEntryAnchored, UpdatedAt: base},
		{RecordRef: "D", Status: models.AnchorEntryPending, UpdatedAt: base.Add(3 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, r.Save(ctx, e))
	}

	pending, err := r.ListPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "A", pending[0].RecordRef)
	assert.Equal(t, "B", pending[1].RecordRef)

	_, err = r.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
