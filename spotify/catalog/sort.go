package catalog

import (
	"cmp"
	"slices"

	"github.com/xeptore/toptracks/spotify"
)

// SortByPopularity orders tracks by popularity, highest first. Tracks of
// equal popularity keep their relative order.
func SortByPopularity(tracks []spotify.Track) {
	slices.SortStableFunc(tracks, func(a, b spotify.Track) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
}

// Truncate returns the first n tracks, or all of them when n is not positive.
func Truncate(tracks []spotify.Track, n int) []spotify.Track {
	if n <= 0 || n >= len(tracks) {
		return tracks
	}
	return tracks[:n]
}
