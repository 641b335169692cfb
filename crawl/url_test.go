package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoot(t *testing.T) {
	u, err := ParseRoot("https://docs.example.com/guide")
	require.NoError(t, err)
	assert.Equal(t, "docs.example.com", u.Host)

	for _, bad := range []string{"", "example.com", "ftp://example.com", "https://", "http://%zz"} {
		_, err := ParseRoot(bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
}
