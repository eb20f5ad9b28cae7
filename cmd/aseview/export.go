package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"runtime"

	"github.com/retroblast-engine/aseview"
	"github.com/retroblast-engine/aseview/render"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// paletteFlags are shared by the commands that render frames.
type paletteFlags struct {
	palette    *string
	blackClear *bool
}

func addPaletteFlags(fs *flag.FlagSet) paletteFlags {
	return paletteFlags{
		palette:    fs.String("palette", "", "Comma separated #rrggbb[aa] colors for indexed sprites (default: built-in three-color ramp)"),
		blackClear: fs.Bool("black-clear", false, "Treat #000000 palette entries as transparent"),
	}
}

// loadComposer reads and indexes a sprite file.
func loadComposer(path string, pf paletteFlags) (*render.Composer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger := log.Logger.With().Str("file", path).Logger()
	doc, err := aseview.Decode(data, aseview.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts := []render.ComposerOption{render.WithLogger(logger)}
	if *pf.palette != "" {
		pal, err := render.ParsePalette(*pf.palette, *pf.blackClear)
		if err != nil {
			return nil, err
		}
		opts = append(opts, render.WithPalette(pal))
	}
	c, err := render.NewComposer(doc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Frames() == 0 {
		return nil, fmt.Errorf("%s: no readable frames", path)
	}
	return c, nil
}

func exportCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	var (
		outDir   = fs.String("out", "", "Output directory (required)")
		pf       = addPaletteFlags(fs)
		logLevel = fs.String("log-level", getEnv(logLevelEnv, "info"), "Log level")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := SetLogLevel(*logLevel); err != nil {
		return err
	}
	if *outDir == "" || fs.NArg() != 1 {
		fs.Usage()
		return errors.New("-out and exactly one file are required")
	}

	c, err := loadComposer(fs.Arg(0), pf)
	if err != nil {
		return err
	}
	paths, err := exportFrames(ctx, c, *outDir)
	if err != nil {
		return err
	}
	log.Info().Int("frames", len(paths)).Str("dir", *outDir).Msg("frames exported")
	return nil
}

// exportFrames writes frame_NNN.png for every frame and returns the paths
// in frame order.
func exportFrames(ctx context.Context, c *render.Composer, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	frames, err := render.ComposeAll(ctx, c)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, img := range frames {
		paths[i] = filepath.Join(dir, fmt.Sprintf("frame_%03d.png", i))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Create(paths[i])
			if err != nil {
				return err
			}
			if err := png.Encode(f, img); err != nil {
				f.Close()
				return fmt.Errorf("frame %d: %w", i, err)
			}
			log.Debug().Str("path", paths[i]).Msg("wrote frame")
			return f.Close()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
