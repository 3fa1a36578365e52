package requestid

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	require.Equal(t, "rid-1", Resolve("rid-1"))
	require.Equal(t, "rid-2", Resolve("  rid-2 "))

	for _, given := range []string{"", "   ", strings.Repeat("x", maxLen+1)} {
		_, err := uuid.Parse(Resolve(given))
		require.NoError(t, err, "given %q", given)
	}
}

func TestIntoFrom(t *testing.T) {
	require.Empty(t, From(context.Background()))

	ctx := Into(context.Background(), "abc")
	require.Equal(t, "abc", From(ctx))
}
