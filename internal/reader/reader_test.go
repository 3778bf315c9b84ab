package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEngineRegistersHostModulesAndCloses(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx)
	require.NoError(t, err)
	require.NoError(t, e.Close(ctx))
}

func TestReadRejectsModuleWithoutMain(t *testing.T) {
	ctx := context.Background()
	e, err := NewEngine(ctx)
	require.NoError(t, err)
	defer e.Close(ctx)

	_, err = e.Read(ctx, buildMemoryModule(nil))
	require.Error(t, err)
}
