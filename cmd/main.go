package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/constant"
	"github.com/xeptore/toptracks/errutil"
	"github.com/xeptore/toptracks/log"
	"github.com/xeptore/toptracks/must"
	"github.com/xeptore/toptracks/spotify"
	"github.com/xeptore/toptracks/worker"
)

const (
	flagConfigFilePath = "config"
	flagEnvFile        = "env-file"
	flagVerbose        = "verbose"
	flagDebugDump      = "debug-dump"

	configEnvVar = "TOPTRACKS_CONFIG"

	exitCodeInput = 2
)

func main() {
	logger := log.NewPretty(os.Stderr).Level(zerolog.InfoLevel)

	//nolint:exhaustruct
	app := &cli.App{
		Name:     "toptracks",
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    "List an artist's Spotify tracks ranked by popularity",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     flagConfigFilePath,
				Aliases:  []string{"c"},
				Usage:    "Config file path (alternatively set " + configEnvVar + " to the YAML content)",
				Required: false,
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:  flagEnvFile,
				Usage: "Credentials file path (defaults to " + config.DefaultEnvFile + ")",
			},
			//nolint:exhaustruct
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			fetchCommand(),
			credentialsCommand(),
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if errInput := new(spotify.InputError); errors.As(err, &errInput) {
			logger.Error().Str("input", errInput.Input).Str("reason", errInput.Reason).Msg("Invalid input")
			os.Exit(exitCodeInput)
		}
		if errAlreadyRunning := new(worker.JobAlreadyRunningError); errors.As(err, &errAlreadyRunning) {
			logger.Fatal().Err(err).Msg("Another fetch is still running")
			return
		}
		if errAuth := new(spotify.AuthError); errors.As(err, &errAuth) {
			logger.Fatal().Int("status", errAuth.Status).Func(log.Flaw(err)).Msg("Authentication failed")
			return
		}
		if errFetch := new(spotify.FetchError); errors.As(err, &errFetch) {
			logger.Fatal().Str("endpoint", errFetch.Endpoint).Int("status", errFetch.Status).Func(log.Flaw(err)).Msg("Fetching tracks failed")
			return
		}
		if errutil.IsFlaw(err) {
			logger.Fatal().Func(log.Flaw(err)).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Err(err).Msg("Application exited with error")
	}
}

func newLogger(cliCtx *cli.Context) zerolog.Logger {
	level := zerolog.InfoLevel
	if cliCtx.Bool(flagVerbose) {
		level = zerolog.DebugLevel
	}
	if !isTerminal(os.Stderr) {
		return log.NewPacked(cliCtx.App.ErrWriter).Level(level)
	}
	return log.NewPretty(cliCtx.App.ErrWriter).Level(level)
}

func loadConfig(cliCtx *cli.Context, logger zerolog.Logger) (*config.Config, error) {
	dotenv, err := config.ReadDotenv(config.DefaultEnvFile)
	if nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		logger.Debug().Msg(".env file was not found")
	}

	var (
		cfg         *config.Config
		cfgEnv      = dotenv.Get(configEnvVar)
		cfgFilePath = cliCtx.String(flagConfigFilePath)
	)
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, fmt.Errorf("config file path and %s environment variable are both set. specify only one", configEnvVar)
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		c, err := config.FromFile(cfgFilePath, dotenv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		cfg = c
	case cfgEnv != "":
		logger.Debug().Msg("Loading config from environment variable")
		c, err := config.FromString(cfgEnv, dotenv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		cfg = c
	default:
		logger.Debug().Msg("Loading default config")
		c, err := config.FromEnv(dotenv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config: %v", err)
		}
		cfg = c
	}

	if envFile := cliCtx.String(flagEnvFile); envFile != "" {
		cfg.EnvFile = envFile
	}
	return cfg, nil
}

// dumpFlaw writes the YAML rendition of err to filePath. Errors without a
// flaw in their chain have nothing to dump.
func dumpFlaw(filePath string, err error) error {
	if !errutil.IsFlaw(err) {
		return nil
	}

	flawBytes, err := errutil.FlawToYAML(must.BeFlaw(err))
	if nil != err {
		return fmt.Errorf("failed to convert flaw to YAML: %v", err)
	}
	if err := os.WriteFile(filePath, flawBytes, 0o0600); nil != err {
		flawP := flaw.P{"file_path": filePath, "err_debug_tree": errutil.Tree(err).FlawP()}
		return flaw.From(fmt.Errorf("failed to write debug dump: %v", err)).Append(flawP)
	}
	return nil
}
