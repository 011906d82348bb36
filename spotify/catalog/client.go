package catalog

import (
	"github.com/rs/zerolog"

	"github.com/xeptore/toptracks/config"
)

const (
	DefaultPageSize      = 50
	MaxTracksPerRequest  = 50
	DefaultIncludeGroups = config.DefaultIncludeGroups
)

// Client is a read-only client of the catalog endpoints of the Web API.
type Client struct {
	apiBaseURL string
	logger     zerolog.Logger
}

func New(apiBaseURL string, logger zerolog.Logger) *Client {
	return &Client{
		apiBaseURL: apiBaseURL,
		logger:     logger.With().Str("module", "catalog").Logger(),
	}
}
