package build

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnknownWithoutLdflags(t *testing.T) {
	require.Equal(t, "?", Version())
	require.Equal(t, "?", Commit())
	require.Equal(t, int64(0), CommitTimestamp())
	require.NotEmpty(t, AppName())
	require.True(t, strings.Contains(Info(), runtime.Version()))
}
