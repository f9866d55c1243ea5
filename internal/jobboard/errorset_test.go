package jobboard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorSet_Add(t *testing.T) {
	t.Parallel()

	set := NewErrorSet()
	set.Add("insert failed")
	set.Add("insert failed")
	set.Add("")
	set.Add("timeout")

	require.Equal(t, 2, set.Len())
}

func TestErrorSet_Format(t *testing.T) {
	t.Parallel()

	t.Run("sorts entries regardless of insertion order", func(t *testing.T) {
		t.Parallel()
		first := NewErrorSet()
		first.Add("b failed")
		first.Add("a failed")

		second := NewErrorSet()
		second.Add("a failed")
		second.Add("b failed")

		require.Equal(t, "a failed; b failed", first.Format(0))
		require.Equal(t, first.Format(0), second.Format(0))
	})

	t.Run("empty set formats to empty string", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "", NewErrorSet().Format(100))
	})

	t.Run("truncates to max runes", func(t *testing.T) {
		t.Parallel()
		set := NewErrorSet()
		set.Add(strings.Repeat("x", 50))
		got := set.Format(10)
		require.Equal(t, 10, len([]rune(got)))
	})

	t.Run("truncation counts runes not bytes", func(t *testing.T) {
		t.Parallel()
		set := NewErrorSet()
		set.Add("日本語のエラーメッセージ")
		got := set.Format(5)
		require.Equal(t, "日本語のエ", got)
	})

	t.Run("no cap when max is zero", func(t *testing.T) {
		t.Parallel()
		set := NewErrorSet()
		long := strings.Repeat("y", 5000)
		set.Add(long)
		require.Equal(t, long, set.Format(0))
	})
}

func TestErrorSet_Merge(t *testing.T) {
	t.Parallel()

	target := NewErrorSet()
	target.Add("shared")

	other := NewErrorSet()
	other.Add("shared")
	other.Add("unique")

	target.Merge(other)
	target.Merge(nil)

	require.Equal(t, 2, target.Len())
	require.Equal(t, "shared; unique", target.Format(0))
}
