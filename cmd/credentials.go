package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/term"

	"github.com/xeptore/toptracks/errutil"
	"github.com/xeptore/toptracks/log"
	"github.com/xeptore/toptracks/spotify"
	"github.com/xeptore/toptracks/spotify/fs"
)

func credentialsCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "credentials",
		Usage: "Manage the stored client credentials",
		Subcommands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:   "set",
				Usage:  "Prompt for the client ID and secret and store them",
				Action: setCredentials,
			},
			//nolint:exhaustruct
			{
				Name:   "show",
				Usage:  "Print the stored client ID and secret, redacted",
				Action: showCredentials,
			},
		},
	}
}

func setCredentials(cliCtx *cli.Context) error {
	logger := newLogger(cliCtx)
	cfg, err := loadConfig(cliCtx, logger)
	if nil != err {
		return err
	}

	creds, err := promptCredentials(os.Stdin, cliCtx.App.ErrWriter)
	if nil != err {
		return err
	}

	file := fs.CredentialsFile(cfg.EnvFile)
	if err := file.Write(*creds); nil != err {
		return err
	}
	logger.Info().Str("file_path", cfg.EnvFile).Msg("Credentials saved")
	return nil
}

func showCredentials(cliCtx *cli.Context) error {
	logger := newLogger(cliCtx)
	cfg, err := loadConfig(cliCtx, logger)
	if nil != err {
		return err
	}

	creds, err := fs.CredentialsFile(cfg.EnvFile).Read()
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return &spotify.InputError{Input: cfg.EnvFile, Reason: "no credentials are stored in this file"}
		}
		return err
	}

	w := cliCtx.App.Writer
	fmt.Fprintf(w, "%s=%s\n", fs.ClientIDKey, log.RedactString(creds.ClientID))
	fmt.Fprintf(w, "%s=%s\n", fs.ClientSecretKey, log.RedactString(creds.ClientSecret))
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec
}

// promptCredentials reads the client ID as a line and the secret without
// echo when in is a terminal.
func promptCredentials(in *os.File, out io.Writer) (*fs.CredentialsFileContent, error) {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "Client ID: ")
	clientID, err := reader.ReadString('\n')
	if nil != err && !errors.Is(err, io.EOF) {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to read client ID: %v", err)).Append(flawP)
	}

	fmt.Fprint(out, "Client secret: ")
	var clientSecret string
	if isTerminal(in) {
		b, err := term.ReadPassword(int(in.Fd())) //nolint:gosec
		fmt.Fprintln(out)
		if nil != err {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read client secret: %v", err)).Append(flawP)
		}
		clientSecret = string(b)
	} else {
		line, err := reader.ReadString('\n')
		if nil != err && !errors.Is(err, io.EOF) {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read client secret: %v", err)).Append(flawP)
		}
		clientSecret = line
	}

	creds := fs.CredentialsFileContent{
		ClientID:     strings.TrimSpace(clientID),
		ClientSecret: strings.TrimSpace(clientSecret),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, &spotify.InputError{Input: "", Reason: "client ID and client secret must not be empty"}
	}
	return &creds, nil
}
