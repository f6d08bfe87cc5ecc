package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_StackTopReturnsMarker(t *testing.T) {
	// The exact value depends on the runtime's stack placement; all a
	// caller may rely on is a nonzero bound it can hand to SetStackTop.
	require.NotZero(t, StackTop())
}
