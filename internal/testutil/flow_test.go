package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedTraceIDGenerator(t *testing.T) {
	gen := NewFixedTraceIDGenerator("trace-1")
	assert.Equal(t, "trace-1", gen.Generate())
	assert.Equal(t, "trace-1", gen.Generate())

	assert.Equal(t, "test-trace-default", NewFixedTraceIDGenerator("").Generate())
}

func TestFailingMedium(t *testing.T) {
	ctx := context.Background()
	m := NewFailingMedium()

	require.NoError(t, m.Set(ctx, "k", []byte("v")))

	m.FailWrites(true)
	assert.ErrorIs(t, m.Set(ctx, "k", []byte("w")), ErrInjected)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got), "failed write must not change the value")
	assert.Equal(t, 2, m.Writes())

	m.FailWrites(false)
	assert.NoError(t, m.Set(ctx, "k", []byte("w")))
}
