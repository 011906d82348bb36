package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/xeptore/toptracks/cache"
	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/log"
	"github.com/xeptore/toptracks/present"
	"github.com/xeptore/toptracks/spotify"
	"github.com/xeptore/toptracks/spotify/auth"
	"github.com/xeptore/toptracks/spotify/catalog"
	"github.com/xeptore/toptracks/spotify/fs"
	"github.com/xeptore/toptracks/spotify/thumbnail"
	"github.com/xeptore/toptracks/worker"
)

const (
	flagArtist        = "artist"
	flagMarket        = "market"
	flagAll           = "all"
	flagLimit         = "limit"
	flagIncludeGroups = "include-groups"
	flagOutput        = "output"
	flagThumbnails    = "thumbnails"
	flagOpen          = "open"

	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var outputs = []string{outputTable, outputJSON, outputYAML}

func fetchCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Fetch an artist's tracks sorted by popularity",
		Action:  fetch,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     flagArtist,
				Aliases:  []string{"a"},
				Usage:    "Artist share link or catalog ID",
				Required: true,
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    flagMarket,
				Aliases: []string{"m"},
				Usage:   "Two-letter market code (defaults to the configured market)",
			},
			//nolint:exhaustruct
			&cli.BoolFlag{
				Name:  flagAll,
				Usage: "Crawl every release of the artist instead of the top tracks",
			},
			//nolint:exhaustruct
			&cli.IntFlag{
				Name:    flagLimit,
				Aliases: []string{"n"},
				Usage:   "Maximum number of tracks to show, 0 for all (defaults to the configured value)",
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:  flagIncludeGroups,
				Usage: "Release groups crawled with --all (defaults to the configured groups)",
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "Output format: " + strings.Join(outputs, ", "),
				Value:   outputTable,
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:  flagThumbnails,
				Usage: "Directory to save album thumbnails into",
			},
			//nolint:exhaustruct
			&cli.IntFlag{
				Name:  flagOpen,
				Usage: "Open the N-th listed track in the browser",
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:  flagDebugDump,
				Usage: "Write the error details as YAML to this file when the fetch fails",
			},
		},
	}
}

func fetch(cliCtx *cli.Context) (err error) {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(cliCtx)
	if debugDump := cliCtx.String(flagDebugDump); debugDump != "" {
		defer func() {
			if nil == err {
				return
			}
			if dumpErr := dumpFlaw(debugDump, err); nil != dumpErr {
				logger.Error().Func(log.Flaw(dumpErr)).Msg("Failed to write debug dump")
				return
			}
			logger.Info().Str("file_path", debugDump).Msg("Wrote debug dump")
		}()
	}

	output := strings.ToLower(strings.TrimSpace(cliCtx.String(flagOutput)))
	if !slices.Contains(outputs, output) {
		return &spotify.InputError{Input: output, Reason: "output must be one of " + strings.Join(outputs, ", ")}
	}

	cfg, err := loadConfig(cliCtx, logger)
	if nil != err {
		return err
	}

	req := catalog.Request{
		ArtistRef:     cliCtx.String(flagArtist),
		Market:        cfg.Market,
		Mode:          catalog.ModeTop,
		MaxResults:    cfg.MaxResults,
		IncludeGroups: cfg.IncludeGroups,
	}
	if cliCtx.IsSet(flagMarket) {
		req.Market = cliCtx.String(flagMarket)
	}
	if cliCtx.Bool(flagAll) {
		req.Mode = catalog.ModeAll
	}
	if cliCtx.IsSet(flagLimit) {
		req.MaxResults = cliCtx.Int(flagLimit)
	}
	if cliCtx.IsSet(flagIncludeGroups) {
		req.IncludeGroups = cliCtx.String(flagIncludeGroups)
	}
	artistID, market, err := req.Validate()
	if nil != err {
		return err
	}
	logger.Debug().
		Str("artist_id", artistID).
		Bool("share_link", spotify.IsArtistLink(req.ArtistRef)).
		Str("market", market).
		Msg("Resolved fetch request")

	creds, err := loadCredentials(cliCtx, logger, fs.CredentialsFile(cfg.EnvFile))
	if nil != err {
		return err
	}

	w := worker.New(newFetchFunc(cfg, creds, logger), logger)
	results, err := w.Submit(ctx, req)
	if nil != err {
		return err
	}
	logger.Info().Str("artist", req.ArtistRef).Str("mode", req.Mode.String()).Msg("Fetching tracks")
	res := <-results
	w.Wait()
	if err := res.Err(); nil != err {
		return err
	}
	outcome := res.Unwrap()

	if err := render(cliCtx, output, outcome.Tracks); nil != err {
		return err
	}
	logger.Info().Dur("elapsed", outcome.Elapsed).Msg(present.Status(outcome.Tracks, outcome.Mode))

	if dir := cliCtx.String(flagThumbnails); dir != "" {
		fetcher := thumbnail.NewFetcher(cache.New(), logger)
		paths, err := fetcher.SaveAll(ctx, dir, outcome.Tracks)
		if nil != err {
			return err
		}
		logger.Info().Str("dir", dir).Int("files", len(paths)).Msg("Saved thumbnails")
	}

	if cliCtx.IsSet(flagOpen) {
		link, err := present.Open(outcome.Tracks, cliCtx.Int(flagOpen), nil)
		if nil != err {
			return err
		}
		logger.Info().Str("url", link).Msg("Opened track in browser")
	}

	return nil
}

func newFetchFunc(cfg *config.Config, creds *fs.CredentialsFileContent, logger zerolog.Logger) worker.Func {
	provider := auth.NewProvider(cfg.AccountsBaseURL, logger)
	client := catalog.New(cfg.APIBaseURL, logger)
	return func(ctx context.Context, req catalog.Request) ([]spotify.Track, error) {
		if _, _, err := req.Validate(); nil != err {
			return nil, err
		}
		token, err := provider.AcquireToken(ctx, auth.CredentialsFromFile(*creds))
		if nil != err {
			return nil, err
		}
		return client.Fetch(ctx, token, req)
	}
}

func render(cliCtx *cli.Context, output string, tracks []spotify.Track) error {
	w := cliCtx.App.Writer
	switch output {
	case outputJSON:
		return present.JSON(w, tracks)
	case outputYAML:
		return present.YAML(w, tracks)
	default:
		present.Table(w, tracks)
		return nil
	}
}

// loadCredentials reads the stored secrets, asking for them on the terminal
// and saving them when the file does not hold both yet.
func loadCredentials(cliCtx *cli.Context, logger zerolog.Logger, file fs.CredentialsFile) (*fs.CredentialsFileContent, error) {
	creds, err := file.Read()
	if nil == err {
		return creds, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if !isTerminal(os.Stdin) {
		return nil, &spotify.InputError{
			Input:  string(file),
			Reason: fmt.Sprintf("credentials are missing; run `%s credentials set` first", cliCtx.App.Name),
		}
	}

	logger.Warn().Str("file_path", string(file)).Msg("Credentials were not found. Please enter them now")
	creds, err = promptCredentials(os.Stdin, cliCtx.App.ErrWriter)
	if nil != err {
		return nil, err
	}
	if err := file.Write(*creds); nil != err {
		return nil, err
	}
	logger.Info().Str("file_path", string(file)).Msg("Credentials saved")
	return creds, nil
}
