package spotify

import (
	"strings"

	"github.com/samber/lo"
)

type Image struct {
	URL    string `json:"url"    yaml:"url"`
	Width  int    `json:"width"  yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

type Album struct {
	ID     string  `json:"id"     yaml:"id"`
	Name   string  `json:"name"   yaml:"name"`
	Images []Image `json:"images" yaml:"images"`
}

// Thumbnail returns the last listed image URL, which the API orders
// smallest, or an empty string when the album has no images.
func (a Album) Thumbnail() string {
	if len(a.Images) == 0 {
		return ""
	}
	return a.Images[len(a.Images)-1].URL
}

type Track struct {
	ID          string   `json:"id"           yaml:"id"`
	Name        string   `json:"name"         yaml:"name"`
	Popularity  int      `json:"popularity"   yaml:"popularity"`
	ExternalURL string   `json:"external_url" yaml:"external_url"`
	Album       Album    `json:"album"        yaml:"album"`
	Artists     []string `json:"artists"      yaml:"artists"`
}

func JoinArtists(artists []string) string {
	return strings.Join(lo.Compact(artists), ", ")
}
