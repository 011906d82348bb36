package spotify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/toptracks/spotify"
)

func TestExtractArtistID(t *testing.T) {
	t.Parallel()

	t.Run("share_links", func(t *testing.T) {
		t.Parallel()

		tests := map[string]string{
			"https://open.spotify.com/artist/ABC123?si=xyz":           "ABC123",
			"https://open.spotify.com/artist/4NJxtQzTTeO3ObGlBcxVAh":  "4NJxtQzTTeO3ObGlBcxVAh",
			"  https://open.spotify.com/artist/ABC123/  ":             "ABC123",
			"https://open.spotify.com/artist/ABC123/discography/all": "ABC123",
			"http://open.spotify.com/artist/ABC123#top":               "ABC123",
		}
		for input, expected := range tests {
			id, err := spotify.ExtractArtistID(input)
			require.NoError(t, err, input)
			assert.Equal(t, expected, id, input)
		}
	})

	t.Run("verbatim_fallback", func(t *testing.T) {
		t.Parallel()

		tests := map[string]string{
			"ABC123":                                 "ABC123",
			"  ABC123 \n":                            "ABC123",
			"https://open.spotify.com/album/XYZ":     "https://open.spotify.com/album/XYZ",
			"https://example.com/artist/ABC123":      "https://example.com/artist/ABC123",
			"https://open.spotify.com/artist":        "https://open.spotify.com/artist",
			"spotify:artist:4NJxtQzTTeO3ObGlBcxVAh": "spotify:artist:4NJxtQzTTeO3ObGlBcxVAh",
		}
		for input, expected := range tests {
			id, err := spotify.ExtractArtistID(input)
			require.NoError(t, err, input)
			assert.Equal(t, expected, id, input)
		}
	})

	t.Run("empty_input", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"", "   ", "\t\n"} {
			_, err := spotify.ExtractArtistID(input)
			var inputErr *spotify.InputError
			require.True(t, errors.As(err, &inputErr), "input %q", input)
		}
	})
}

func TestIsArtistLink(t *testing.T) {
	t.Parallel()

	assert.True(t, spotify.IsArtistLink("https://open.spotify.com/artist/ABC123?si=xyz"))
	assert.False(t, spotify.IsArtistLink("ABC123"))
	assert.False(t, spotify.IsArtistLink("https://open.spotify.com/track/ABC123"))
}
