package fs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/toptracks/errutil"
)

const (
	ClientIDKey     = "SPOTIFY_CLIENT_ID"
	ClientSecretKey = "SPOTIFY_CLIENT_SECRET" //nolint:gosec
)

type CredentialsFile string

func (f CredentialsFile) path() string {
	return string(f)
}

type CredentialsFileContent struct {
	ClientID     string
	ClientSecret string
}

// Read returns os.ErrNotExist when the file is missing or does not hold both
// secrets.
func (f CredentialsFile) Read() (*CredentialsFileContent, error) {
	flawP := flaw.P{"file_path": f.path()}
	vars, err := godotenv.Read(f.path())
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to read credentials file: %v", err)).Append(flawP)
	}

	content := CredentialsFileContent{
		ClientID:     strings.TrimSpace(vars[ClientIDKey]),
		ClientSecret: strings.TrimSpace(vars[ClientSecretKey]),
	}
	if content.ClientID == "" || content.ClientSecret == "" {
		return nil, os.ErrNotExist
	}
	return &content, nil
}

// Write stores both secrets, keeping any other keys already present in the file.
func (f CredentialsFile) Write(c CredentialsFileContent) error {
	flawP := flaw.P{"file_path": f.path()}
	vars, err := godotenv.Read(f.path())
	if nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return flaw.From(fmt.Errorf("failed to read existing credentials file: %v", err)).Append(flawP)
		}
		vars = make(map[string]string, 2)
	}

	vars[ClientIDKey] = strings.TrimSpace(c.ClientID)
	vars[ClientSecretKey] = strings.TrimSpace(c.ClientSecret)
	if err := godotenv.Write(vars, f.path()); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to write credentials file: %v", err)).Append(flawP)
	}

	if err := os.Chmod(f.path(), 0o0600); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to restrict credentials file permissions: %v", err)).Append(flawP)
	}
	return nil
}
