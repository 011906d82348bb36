package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const EnvPrefix = "TOPTRACKS_"

// Dotenv holds the TOPTRACKS_ variables read from a dotenv file.
type Dotenv map[string]string

// ReadDotenv reads the TOPTRACKS_ variables of the dotenv file at filePath.
// Other keys, such as the stored client credentials, are left out and the
// process environment is not modified. A missing file yields os.ErrNotExist.
func ReadDotenv(filePath string) (Dotenv, error) {
	vars, err := godotenv.Read(filePath)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read dotenv file %q: %v", filePath, err)
	}

	out := make(Dotenv, len(vars))
	for k, v := range vars {
		if strings.HasPrefix(k, EnvPrefix) {
			out[k] = v
		}
	}
	return out, nil
}

// Get returns the value of key, preferring the process environment.
func (d Dotenv) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return d[key]
}

// environ merges d under the process environment.
func (d Dotenv) environ() map[string]string {
	out := make(map[string]string, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
