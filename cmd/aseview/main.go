package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logLevelEnv = "ASEVIEW_LOG_LEVEL"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	var err error
	switch command {
	case "info":
		err = infoCommand(ctx, os.Stdout, os.Args[2:])
	case "export":
		err = exportCommand(ctx, os.Args[2:])
	case "view":
		err = viewCommand(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", command)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `aseview - Aseprite sprite inspector

Usage:
  aseview <command> [options] file...

Commands:
  info    Print header, layers and frames of one or more .ase files
  export  Write every composed frame as a PNG
  view    Play the animation in a window

Examples:
  aseview info -chunks hero.aseprite
  aseview info -json *.ase
  aseview export -out frames/ -palette "#000000,#161236,#ffffff" hero.aseprite
  aseview view -scale 8 hero.aseprite

Environment Variables:
  %s    Default log level (debug, info, warn, error, disabled)

`, logLevelEnv)
}

// SetLogLevel sets the global zerolog level by name.
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled", "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// formatFileSize converts the file size to a human-readable format
func formatFileSize(size uint32) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1fK", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.1fM", float64(size)/(1024*1024))
	default:
		return fmt.Sprintf("%.1fG", float64(size)/(1024*1024*1024))
	}
}
