package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maitriconnect/maitri-api/internal/domain"
)

func TestNoop(t *testing.T) {
	var c PublicEvents = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []domain.Event{{ID: "x"}}))
	got, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx))
}
