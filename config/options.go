package config

import "time"

var (
	TokenRequestTimeout       = 20 * time.Second
	TopTracksRequestTimeout   = 20 * time.Second
	PageRequestTimeout        = 30 * time.Second
	TracksBatchRequestTimeout = 30 * time.Second
	CoverDownloadTimeout      = 20 * time.Second
)
