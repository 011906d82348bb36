package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"

	"github.com/xeptore/toptracks/constant"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

func newBaseLogger() zerolog.Logger {
	return zerolog.
		New(io.Discard).
		With().
		Dict(
			"app",
			zerolog.Dict().
				Str("version", constant.Version).
				Str("compilation_time", constant.CompileTime.Format(time.RFC3339)),
		).
		Timestamp().
		Logger().
		Level(zerolog.TraceLevel)
}

// NewPretty writes colorized, indented JSON lines. Meant for interactive terminals.
func NewPretty(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(prettyWriter{out: w})
}

func NewPacked(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(w)
}

type prettyWriter struct {
	out io.Writer
}

func (p prettyWriter) Write(line []byte) (int, error) {
	if n, err := p.out.Write(pretty.Color(pretty.Pretty(line), nil)); nil != err {
		return n, err
	}
	return len(line), nil
}
