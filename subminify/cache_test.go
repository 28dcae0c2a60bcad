package subminify

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaches_CallCachesByTextAndOptions(t *testing.T) {
	c := NewCaches(10)

	var calls int32
	fn := func(ctx context.Context, text string, hint Hint) (string, error) {
		atomic.AddInt32(&calls, 1)
		return text + "!", nil
	}

	out, err := c.Call(context.Background(), JS, "a", "sig1", Hint{}, fn)
	require.NoError(t, err)
	require.Equal(t, "a!", out)

	out, err = c.Call(context.Background(), JS, "a", "sig1", Hint{}, fn)
	require.NoError(t, err)
	require.Equal(t, "a!", out)
	require.EqualValues(t, 1, calls, "second call with an identical key should hit the cache")

	_, err = c.Call(context.Background(), JS, "a", "sig2", Hint{}, fn)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls, "a different options signature must not share a cache entry")
}

func TestCaches_KindsDoNotShareBuckets(t *testing.T) {
	c := NewCaches(10)
	var calls int32
	fn := func(ctx context.Context, text string, hint Hint) (string, error) {
		atomic.AddInt32(&calls, 1)
		return text, nil
	}

	_, err := c.Call(context.Background(), JS, "x", "sig", Hint{}, fn)
	require.NoError(t, err)
	_, err = c.Call(context.Background(), CSS, "x", "sig", Hint{}, fn)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls)
}

func TestFingerprint_LongTextUsesEdges(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	other := make([]byte, 200)
	copy(other, long)
	other[100] = 'b' // middle byte differs, outside the first/last 50

	require.Equal(t, fingerprint(string(long), "sig"), fingerprint(string(other), "sig"))
}
