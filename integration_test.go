package forkwork

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests spawn real worker processes by re-executing the test binary;
// TestMain routes those invocations into Main.

func TestIntegration_SyncRun(t *testing.T) {
	t.Run("result and message of a clean worker", func(t *testing.T) {
		orc, err := New("echo", false)
		require.NoError(t, err)

		ok, err := orc.Run("ok")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []any{"ok"}, collectMessages(t, orc))
	})

	t.Run("worker returning false", func(t *testing.T) {
		orc, err := New("fail", false)
		require.NoError(t, err)

		ok, err := orc.Run()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, orc.HasMessages())
	})

	t.Run("crashing worker is plain failure", func(t *testing.T) {
		orc, err := New("boom", false)
		require.NoError(t, err)

		ok, err := orc.Run()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("orchestrator is reusable across runs", func(t *testing.T) {
		orc, err := New("echo", false)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			orc.ClearMessages()

			ok, err := orc.Run(fmt.Sprintf("pass-%d", i))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []any{fmt.Sprintf("pass-%d", i)}, collectMessages(t, orc))
		}
	})

	t.Run("worker that sends nothing leaves no message", func(t *testing.T) {
		orc, err := New("silent", false)
		require.NoError(t, err)

		ok, err := orc.Run()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, orc.HasMessages())
	})
}

func TestIntegration_ArgumentSnapshot(t *testing.T) {
	t.Run("arguments cross the exec boundary", func(t *testing.T) {
		orc, err := New("sum", false)
		require.NoError(t, err)

		ok, err := orc.Run(1, 2, 3.5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []any{float64(6.5)}, collectMessages(t, orc))
	})

	t.Run("no arguments", func(t *testing.T) {
		orc, err := New("sum", false)
		require.NoError(t, err)

		ok, err := orc.Run()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []any{float64(0)}, collectMessages(t, orc))
	})
}

func TestIntegration_LaunchOrder(t *testing.T) {
	t.Run("messages follow launch order, not completion order", func(t *testing.T) {
		orc, err := New("sleepy", true)
		require.NoError(t, err)

		// The first-launched worker sleeps longest, so completion order is
		// the exact reverse of launch order.
		const n = 5
		for i := 0; i < n; i++ {
			ok, err := orc.Run(fmt.Sprintf("w-%d", i), int64((n-1-i)*120))
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := orc.WaitAll()
		require.NoError(t, err)
		assert.True(t, ok)

		want := []any{"w-0", "w-1", "w-2", "w-3", "w-4"}
		assert.Equal(t, want, collectMessages(t, orc))
	})
}

func TestIntegration_WaitAll(t *testing.T) {
	t.Run("true iff every worker succeeded", func(t *testing.T) {
		orc, err := New("echo", true)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := orc.Run(fmt.Sprintf("m-%d", i))
			require.NoError(t, err)
		}

		ok, err := orc.WaitAll()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []any{"m-0", "m-1", "m-2"}, collectMessages(t, orc))
	})

	t.Run("one failure makes the aggregate false", func(t *testing.T) {
		orc, err := New("flaky", true)
		require.NoError(t, err)

		_, err = orc.Run("f-0", true)
		require.NoError(t, err)
		_, err = orc.Run("f-1", false)
		require.NoError(t, err)
		_, err = orc.Run("f-2", true)
		require.NoError(t, err)

		ok, err := orc.WaitAll()
		require.NoError(t, err)
		assert.False(t, ok)

		// The failed worker still reported before exiting; collection is
		// per-process, not per-success.
		assert.Equal(t, []any{"f-0", "f-1", "f-2"}, collectMessages(t, orc))
	})

	t.Run("clears previous messages before collecting", func(t *testing.T) {
		orc, err := New("echo", true)
		require.NoError(t, err)
		orc.AddMessage("stale")

		_, err = orc.Run("fresh")
		require.NoError(t, err)

		_, err = orc.WaitAll()
		require.NoError(t, err)
		assert.Equal(t, []any{"fresh"}, collectMessages(t, orc))
	})

	t.Run("empty batch succeeds vacuously", func(t *testing.T) {
		orc, err := New("echo", true)
		require.NoError(t, err)

		ok, err := orc.WaitAll()
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestIntegration_Overflow(t *testing.T) {
	t.Run("worker overflow surfaces as ordinary failure", func(t *testing.T) {
		orc, err := New("overflow", false)
		require.NoError(t, err)
		orc.SetFrameSize(16)

		ok, err := orc.Run()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, orc.HasMessages())
	})

	t.Run("same worker succeeds with a large enough frame", func(t *testing.T) {
		orc, err := New("overflow", false)
		require.NoError(t, err)
		orc.SetFrameSize(64)

		ok, err := orc.Run()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, orc.HasMessages())
	})
}

func TestIntegration_Stats(t *testing.T) {
	t.Run("runs are counted by disposition", func(t *testing.T) {
		orc, err := New("echo", true)
		require.NoError(t, err)

		_, err = orc.Run("a")
		require.NoError(t, err)
		_, err = orc.Run("b")
		require.NoError(t, err)
		_, err = orc.WaitAll()
		require.NoError(t, err)

		snap := orc.Stats()
		assert.Equal(t, 2, snap.RunsLaunched)
		assert.Equal(t, 2, snap.RunsSucceeded)
		assert.Equal(t, 0, snap.RunsFailed)
		assert.GreaterOrEqual(t, snap.LifetimeMaxMs, snap.LifetimeMinMs)
	})

	t.Run("failures are counted", func(t *testing.T) {
		orc, err := New("fail", false)
		require.NoError(t, err)

		_, err = orc.Run()
		require.NoError(t, err)

		snap := orc.Stats()
		assert.Equal(t, 1, snap.RunsLaunched)
		assert.Equal(t, 1, snap.RunsFailed)
	})
}

func TestIntegration_Launch(t *testing.T) {
	t.Run("construct and run in one call", func(t *testing.T) {
		orc, ok, err := Launch("echo", "one-shot")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = orc.WaitAll()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []any{"one-shot"}, collectMessages(t, orc))
	})

	t.Run("unregistered work", func(t *testing.T) {
		_, _, err := Launch("no-such-work")
		assert.ErrorIs(t, err, ErrWorkNotFound)
	})
}

func TestIntegration_SyncDrainLoop(t *testing.T) {
	t.Run("clear between iterations bounds the list", func(t *testing.T) {
		orc, err := New("echo", false)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			ok, err := orc.Run(fmt.Sprintf("batch-%d", i))
			require.NoError(t, err)
			require.True(t, ok)

			msgs := collectMessages(t, orc)
			require.Len(t, msgs, 1)
			assert.Equal(t, fmt.Sprintf("batch-%d", i), msgs[0])
			orc.ClearMessages()
		}
		assert.False(t, orc.HasMessages())
	})
}
