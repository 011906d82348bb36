package catalog

import (
	"context"
	"strings"

	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/spotify"
)

type Mode int

const (
	ModeTop Mode = iota
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeTop:
		return "top"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

type Request struct {
	ArtistRef     string
	Market        string
	Mode          Mode
	MaxResults    int
	IncludeGroups string
}

// Validate checks req and returns the artist ID and upper-cased market it
// resolves to. It never issues a request.
func (req Request) Validate() (artistID, market string, err error) {
	artistID, err = spotify.ExtractArtistID(req.ArtistRef)
	if nil != err {
		return "", "", err
	}

	market = strings.ToUpper(strings.TrimSpace(req.Market))
	if market == "" {
		market = config.DefaultMarket
	}
	if !config.IsMarket(market) {
		return "", "", &spotify.InputError{Input: req.Market, Reason: "market must be a two-letter country code"}
	}

	if req.Mode != ModeTop && req.Mode != ModeAll {
		return "", "", &spotify.InputError{Input: req.Mode.String(), Reason: "unsupported fetch mode"}
	}
	return artistID, market, nil
}

// Fetch resolves req.ArtistRef and loads the tracks selected by req.Mode.
// Invalid input is reported as *spotify.InputError before any request is sent.
func (c *Client) Fetch(ctx context.Context, token string, req Request) ([]spotify.Track, error) {
	artistID, market, err := req.Validate()
	if nil != err {
		return nil, err
	}

	var tracks []spotify.Track
	if req.Mode == ModeAll {
		tracks, err = c.CollectAllTracks(ctx, token, artistID, market, req.IncludeGroups)
	} else {
		tracks, err = c.TopTracks(ctx, token, artistID, market)
	}
	if nil != err {
		return nil, err
	}

	return Truncate(tracks, req.MaxResults), nil
}
