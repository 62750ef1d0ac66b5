//go:build sqlite_cgo

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the CGO driver variant end to end.
func TestCGODriver(t *testing.T) {
	assert.Equal(t, "sqlite3", sqliteDriverName)

	st, err := NewSQLiteLineageStore(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.CreateComponent(ctx, "cleaning", "", "ana", nil))

	c, err := st.GetComponent(ctx, "cleaning")
	require.NoError(t, err)
	assert.Equal(t, "ana", c.Owner)
}
