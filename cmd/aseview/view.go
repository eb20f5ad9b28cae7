package main

import (
	"context"
	"errors"
	"flag"
	"path/filepath"

	"github.com/retroblast-engine/aseview/ebitenview"
	"github.com/retroblast-engine/aseview/render"
)

func viewCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)

	var (
		scale    = fs.Int("scale", 4, "Window pixels per sprite pixel")
		pf       = addPaletteFlags(fs)
		logLevel = fs.String("log-level", getEnv(logLevelEnv, "info"), "Log level")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := SetLogLevel(*logLevel); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("exactly one file is required")
	}

	c, err := loadComposer(fs.Arg(0), pf)
	if err != nil {
		return err
	}
	frames, err := render.ComposeAll(ctx, c)
	if err != nil {
		return err
	}

	v, err := ebitenview.NewViewer(ebitenview.NewSprites(frames), c.Index().Durations(), *scale)
	if err != nil {
		return err
	}
	return ebitenview.Run(v, filepath.Base(fs.Arg(0)))
}
