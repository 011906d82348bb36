package spotify

import (
	"net/url"
	"strings"
)

const (
	shareLinkHost       = "open.spotify.com"
	artistResourceToken = "artist"
)

func artistIDFromLink(text string) (string, bool) {
	u, err := url.Parse(text)
	if nil != err {
		return "", false
	}

	if !strings.HasSuffix(u.Host, shareLinkHost) {
		return "", false
	}

	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(pathParts) < 2 || pathParts[0] != artistResourceToken || pathParts[1] == "" {
		return "", false
	}
	return pathParts[1], true
}

// IsArtistLink reports whether text is an artist share link such as
// https://open.spotify.com/artist/4NJxtQzTTeO3ObGlBcxVAh.
func IsArtistLink(text string) bool {
	_, ok := artistIDFromLink(strings.TrimSpace(text))
	return ok
}

// ExtractArtistID accepts either a bare catalog ID or an artist share link.
// Anything that is not a recognizable share link is taken verbatim.
func ExtractArtistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &InputError{Input: "", Reason: "artist link or ID is empty"}
	}

	if id, ok := artistIDFromLink(ref); ok {
		return id, nil
	}
	return ref, nil
}
