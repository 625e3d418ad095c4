package table

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordfreq/pkg/contract"
)

func TestObserveCaseFold(t *testing.T) {
	tb := New(nil)
	for _, s := range []string{"Foo", "foo", "FOO", "fOo"} {
		require.NoError(t, tb.Observe([]byte(s)))
	}
	got, err := tb.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []contract.Entry{{Token: "foo", Count: 4}}, got)
}

func TestObserveASCIIOnlyFold(t *testing.T) {
	tb := New(nil)
	// "É" 的 UTF-8 字节不应被折叠；"\xC9" 单字节也原样保留。
	require.NoError(t, tb.Observe([]byte("CAFÉ café \xC9")))
	got, err := tb.Finalize()
	require.NoError(t, err)
	tokens := map[string]int64{}
	for _, e := range got {
		tokens[e.Token] = e.Count
	}
	assert.Equal(t, map[string]int64{"cafÉ": 1, "café": 1, "\xC9": 1}, tokens)
}

func TestObserveSkipsEmptyFragments(t *testing.T) {
	tb := New(nil)
	require.NoError(t, tb.Observe([]byte("  a   b  ")))
	require.NoError(t, tb.Observe([]byte(" ")))
	require.NoError(t, tb.Observe(nil))
	st := tb.Stats()
	assert.Equal(t, 2, st.Distinct)
	assert.Equal(t, int64(2), st.Total)
	assert.Equal(t, int64(3), st.Lines)
}

func TestCountMonotonic(t *testing.T) {
	for _, m := range []int{0, 1, 2, 7, 100} {
		tb := New(nil)
		for i := 0; i < m; i++ {
			require.NoError(t, tb.Observe([]byte("word")))
		}
		got, err := tb.Finalize()
		require.NoError(t, err)
		if m == 0 {
			assert.Empty(t, got)
			continue
		}
		require.Len(t, got, 1)
		assert.Equal(t, int64(m), got[0].Count)
	}
}

// 所有计数之和等于非空片段总数。
func TestTotalInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"a", "B", "c", "Dd", "e'", "...", "''"}
	tb := New(&Options{InitialCapacity: 8})
	var want int64
	for i := 0; i < 200; i++ {
		var sb strings.Builder
		n := rng.Intn(6)
		for j := 0; j < n; j++ {
			sb.WriteString(strings.Repeat(" ", rng.Intn(3)+1))
			sb.WriteString(words[rng.Intn(len(words))])
			want++
		}
		sb.WriteString(" ")
		require.NoError(t, tb.Observe([]byte(sb.String())))
	}
	got, err := tb.Finalize()
	require.NoError(t, err)
	var sum int64
	for _, e := range got {
		sum += e.Count
	}
	assert.Equal(t, want, sum)
	assert.Equal(t, want, tb.Stats().Total)
}

func TestFinalizeOrder(t *testing.T) {
	tb := New(nil)
	require.NoError(t, tb.Observe([]byte("the cat sat . ")))
	require.NoError(t, tb.Observe([]byte("the dog sat . ")))
	got, err := tb.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []contract.Entry{
		{Token: ".", Count: 2},
		{Token: "sat", Count: 2},
		{Token: "the", Count: 2},
		{Token: "cat", Count: 1},
		{Token: "dog", Count: 1},
	}, got)
}

func TestFinalizedState(t *testing.T) {
	tb := New(nil)
	require.NoError(t, tb.Observe([]byte("x")))
	_, err := tb.Finalize()
	require.NoError(t, err)

	require.ErrorIs(t, tb.Observe([]byte("y")), contract.ErrFinalized)
	_, err = tb.Finalize()
	require.ErrorIs(t, err, contract.ErrFinalized)
	assert.Equal(t, int64(1), tb.Stats().Total)
}

func TestObserveDoesNotRetainInput(t *testing.T) {
	tb := New(nil)
	buf := []byte("alpha beta")
	require.NoError(t, tb.Observe(buf))
	copy(buf, "ZZZZZ")
	got, err := tb.Finalize()
	require.NoError(t, err)
	assert.ElementsMatch(t, []contract.Entry{{Token: "alpha", Count: 1}, {Token: "beta", Count: 1}}, got)
}
