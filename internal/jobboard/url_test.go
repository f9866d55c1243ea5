package jobboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalListingURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips atom feed suffix",
			raw:  "https://boards.example.com/acme/feed.atom",
			want: "https://boards.example.com/acme",
		},
		{
			name: "strips json feed suffix",
			raw:  "https://boards.example.com/acme/feed.json",
			want: "https://boards.example.com/acme",
		},
		{
			name: "plain url passes through",
			raw:  "https://boards.example.com/acme",
			want: "https://boards.example.com/acme",
		},
		{
			name: "suffix in the middle is not stripped",
			raw:  "https://example.com/feed.atom/archive",
			want: "https://example.com/feed.atom/archive",
		},
		{
			name: "surrounding whitespace is trimmed",
			raw:  "  https://example.com/jobs \n",
			want: "https://example.com/jobs",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, CanonicalListingURL(tc.raw))
		})
	}
}

func TestSiteBase(t *testing.T) {
	t.Parallel()

	t.Run("returns scheme and host", func(t *testing.T) {
		t.Parallel()
		base, err := SiteBase("https://boards.example.com/acme/feed.atom")
		require.NoError(t, err)
		require.Equal(t, "https://boards.example.com", base)
	})

	t.Run("rejects url without host", func(t *testing.T) {
		t.Parallel()
		_, err := SiteBase("/jobs/listing")
		require.Error(t, err)
	})
}
