package present

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/browser"
	"gopkg.in/yaml.v3"

	"github.com/xeptore/toptracks/spotify"
	"github.com/xeptore/toptracks/spotify/catalog"
)

const (
	UnknownTrack  = "Unknown Track"
	UnknownAlbum  = "Unknown Album"
	UnknownArtist = "Unknown Artist"
)

var tableHeader = []string{"#", "Popularity", "Track", "Album", "Artist(s)", "URL"}

// Row is the display form of a track, with placeholders for missing names.
type Row struct {
	Rank       int    `json:"rank" yaml:"rank"`
	Popularity int    `json:"popularity" yaml:"popularity"`
	Track      string `json:"track" yaml:"track"`
	Album      string `json:"album" yaml:"album"`
	Artists    string `json:"artists" yaml:"artists"`
	URL        string `json:"url" yaml:"url"`
	Thumbnail  string `json:"thumbnail" yaml:"thumbnail"`
	TrackID    string `json:"track_id" yaml:"track_id"`
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func Rows(tracks []spotify.Track) []Row {
	rows := make([]Row, len(tracks))
	for i, track := range tracks {
		rows[i] = Row{
			Rank:       i + 1,
			Popularity: track.Popularity,
			Track:      orDefault(track.Name, UnknownTrack),
			Album:      orDefault(track.Album.Name, UnknownAlbum),
			Artists:    orDefault(spotify.JoinArtists(track.Artists), UnknownArtist),
			URL:        track.ExternalURL,
			Thumbnail:  track.Album.Thumbnail(),
			TrackID:    track.ID,
		}
	}
	return rows
}

func Table(w io.Writer, tracks []spotify.Track) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(tableHeader)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})
	for _, row := range Rows(tracks) {
		table.Append([]string{
			strconv.Itoa(row.Rank),
			strconv.Itoa(row.Popularity),
			row.Track,
			row.Album,
			row.Artists,
			row.URL,
		})
	}
	table.Render()
}

func JSON(w io.Writer, tracks []spotify.Track) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Rows(tracks)); nil != err {
		return fmt.Errorf("failed to encode tracks as JSON: %v", err)
	}
	return nil
}

func YAML(w io.Writer, tracks []spotify.Track) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() {
		if closeErr := enc.Close(); nil != closeErr && nil == err {
			err = fmt.Errorf("failed to flush YAML encoder: %v", closeErr)
		}
	}()
	if err := enc.Encode(Rows(tracks)); nil != err {
		return fmt.Errorf("failed to encode tracks as YAML: %v", err)
	}
	return nil
}

func Status(tracks []spotify.Track, mode catalog.Mode) string {
	modeText := "top tracks"
	if mode == catalog.ModeAll {
		modeText = "all releases"
	}
	return fmt.Sprintf("Loaded %d %s (sorted by Spotify popularity).", len(tracks), modeText)
}

// Opener opens a URL outside of the process. browser.OpenURL is the default.
type Opener func(url string) error

// Open opens the external URL of the n-th track, counting from one.
func Open(tracks []spotify.Track, n int, open Opener) (string, error) {
	if n < 1 || n > len(tracks) {
		return "", &spotify.InputError{Input: strconv.Itoa(n), Reason: fmt.Sprintf("track number must be between 1 and %d", len(tracks))}
	}
	link := tracks[n-1].ExternalURL
	if link == "" {
		return "", &spotify.InputError{Input: strconv.Itoa(n), Reason: "track has no external URL"}
	}
	if nil == open {
		open = browser.OpenURL
	}
	if err := open(link); nil != err {
		return link, fmt.Errorf("failed to open %s: %v", link, err)
	}
	return link, nil
}
