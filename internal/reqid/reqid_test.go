package reqid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewContextAndFromContext(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)
}

func TestNewContextOverrides(t *testing.T) {
	ctx, first := NewContext(context.Background())
	ctx, second := NewContext(ctx)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, second, got)
	_ = first
}
