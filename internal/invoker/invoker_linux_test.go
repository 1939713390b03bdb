//go:build linux

package invoker_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_ForkedChildIsKilled(t *testing.T) {
	inv := newInvoker().Invoke(context.Background(), helperSpec("forks"), ua, 30*time.Second)

	require.Nil(t, inv.Failure, "%+v stderr=%s", inv.Failure, inv.Stderr)
	assert.Equal(t, 0, inv.ExitCode)
	require.NotNil(t, inv.Record)
	assert.Equal(t, "mobile", inv.Record.Device.Type.String())

	var pid int
	_, err := fmt.Sscanf(inv.Stderr, "child %d", &pid)
	require.NoError(t, err, inv.Stderr)
	assert.Eventually(t, func() bool { return !running(pid) }, 5*time.Second, 20*time.Millisecond,
		"child %d outlived the invocation", pid)
}

// running reports whether pid exists and is not a zombie.
func running(pid int) bool {
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return false
	}
	i := bytes.LastIndexByte(stat, ')')
	return i < 0 || i+2 >= len(stat) || stat[i+2] != 'Z'
}
