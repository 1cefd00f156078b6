package main

import (
	"flag"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/internal/terminal"
)

func main() {
	noColor := flag.Bool("no-color", false, "disable colored disks")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	opts := terminal.Options{
		Color: !*noColor && isatty.IsTerminal(os.Stdout.Fd()),
	}
	if err := terminal.Run(os.Stdin, os.Stdout, opts); err != nil {
		log.Fatal().Err(err).Msg("Terminal game failed")
	}
}
