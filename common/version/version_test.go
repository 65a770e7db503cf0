package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildVersionString(t *testing.T) {
	t.Parallel()

	s := BuildVersionString("tokenctl")
	require.Contains(t, s, "tokenctl\n")
	require.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
	require.Contains(t, s, "Git commit:")
}
