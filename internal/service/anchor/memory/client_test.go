package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchain/internal/domain"
)

func TestClient_RecordsCalls(t *testing.T) {
	c := NewClient()
	ctx := context.Background()

	tx1, err := c.Anchor(ctx, "RM-1", "abc", 42)
	require.NoError(t, err)
	tx2, err := c.Anchor(ctx, "RM-1", "abc", 42)
	require.NoError(t, err)
	assert.Equal(t, tx1, tx2)
	assert.Len(t, tx1, 66)

	assert.Equal(t, []Call{{"RM-1", "abc", 42}, {"RM-1", "abc", 42}}, c.Calls())
}

func TestClient_FailureModes(t *testing.T) {
	c := NewClient()
	ctx := context.Background()

	c.SetFailure(FailUnavailable)
	_, err := c.Anchor(ctx, "RM-1", "abc", 1)
	assert.True(t, errors.Is(err, domain.ErrAnchorUnavailable))

	c.SetFailure(FailRejected)
	_, err = c.Anchor(ctx, "RM-1", "abc", 1)
	assert.True(t, errors.Is(err, domain.ErrAnchorRejected))
	assert.True(t, domain.IsAnchorFailure(err))

	c.SetFailure(FailNone)
	_, err = c.Anchor(ctx, "RM-1", "abc", 1)
	assert.NoError(t, err)
	assert.Len(t, c.Calls(), 3)
}
