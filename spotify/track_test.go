package spotify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/toptracks/spotify"
)

func TestAlbumThumbnail(t *testing.T) {
	t.Parallel()

	album := spotify.Album{
		ID:   "al1",
		Name: "Debut",
		Images: []spotify.Image{
			{URL: "https://i.scdn.co/image/640", Width: 640, Height: 640},
			{URL: "https://i.scdn.co/image/300", Width: 300, Height: 300},
			{URL: "https://i.scdn.co/image/64", Width: 64, Height: 64},
		},
	}
	assert.Equal(t, "https://i.scdn.co/image/64", album.Thumbnail())
	assert.Empty(t, spotify.Album{}.Thumbnail()) //nolint:exhaustruct
}

func TestJoinArtists(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Main, Guest", spotify.JoinArtists([]string{"Main", "", "Guest"}))
	assert.Empty(t, spotify.JoinArtists(nil))
}
