package catalog

import (
	"github.com/samber/lo"

	"github.com/xeptore/toptracks/ptr"
	"github.com/xeptore/toptracks/spotify"
)

type idItem struct {
	ID string `json:"id"`
}

type imagePayload struct {
	URL    string `json:"url"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
}

type albumPayload struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []imagePayload `json:"images"`
}

type artistPayload struct {
	Name string `json:"name"`
}

type trackPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Popularity   *int   `json:"popularity"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Album   *albumPayload   `json:"album"`
	Artists []artistPayload `json:"artists"`
}

func (p trackPayload) toTrack() spotify.Track {
	var album spotify.Album
	if nil != p.Album {
		album = spotify.Album{
			ID:   p.Album.ID,
			Name: p.Album.Name,
			Images: lo.Map(p.Album.Images, func(img imagePayload, _ int) spotify.Image {
				return spotify.Image{
					URL:    img.URL,
					Width:  ptr.ValueOr(img.Width, 0),
					Height: ptr.ValueOr(img.Height, 0),
				}
			}),
		}
	}

	return spotify.Track{
		ID:          p.ID,
		Name:        p.Name,
		Popularity:  ptr.ValueOr(p.Popularity, 0),
		ExternalURL: p.ExternalURLs.Spotify,
		Album:       album,
		Artists:     lo.Map(p.Artists, func(a artistPayload, _ int) string { return a.Name }),
	}
}

// toTracks converts a tracks array, dropping the null entries the bulk
// endpoint returns for unknown or unavailable ids.
func toTracks(payloads []*trackPayload) []spotify.Track {
	return lo.FilterMap(payloads, func(p *trackPayload, _ int) (spotify.Track, bool) {
		if nil == p {
			return spotify.Track{}, false
		}
		return p.toTrack(), true
	})
}
