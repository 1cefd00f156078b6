package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init configures the global zerolog logger. Entries go to stdout and, when
// file is set, are also appended to that file. The returned closer releases
// the file.
func Init(level, file string) (io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)

	if file == "" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	runLogFile, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	multi := zerolog.MultiLevelWriter(runLogFile, os.Stdout)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return runLogFile, nil
}
