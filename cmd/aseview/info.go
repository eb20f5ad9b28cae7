package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/retroblast-engine/aseview"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type fileReport struct {
	File             string        `json:"file"`
	FileSize         uint32        `json:"file_size"`
	Width            int           `json:"width"`
	Height           int           `json:"height"`
	ColorMode        string        `json:"color_mode"`
	Depth            int           `json:"depth"`
	Colors           int           `json:"colors"`
	Flags            uint32        `json:"flags"`
	Speed            int           `json:"speed_ms"`
	TransparentIndex int           `json:"transparent_index"`
	PixelRatio       string        `json:"pixel_ratio"`
	GridWidth        int           `json:"grid_width"`
	GridHeight       int           `json:"grid_height"`
	FrameCount       int           `json:"frame_count"`
	Layers           []layerReport `json:"layers"`
	Frames           []frameReport `json:"frames"`
	Error            string        `json:"error,omitempty"`
}

type layerReport struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Level     int    `json:"level"`
	Type      string `json:"type"`
	BlendMode string `json:"blend_mode"`
	Opacity   int    `json:"opacity"`
	Flags     string `json:"flags"`
	Error     string `json:"error,omitempty"`
}

type frameReport struct {
	Index      int           `json:"index"`
	DurationMS int           `json:"duration_ms"`
	ChunkCount int           `json:"chunk_count"`
	Chunks     []chunkReport `json:"chunks,omitempty"`
	Error      string        `json:"error,omitempty"`
}

type chunkReport struct {
	Type   string `json:"type"`
	Size   uint32 `json:"size"`
	Detail string `json:"detail,omitempty"`
}

func infoCommand(ctx context.Context, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)

	var (
		asJSON   = fs.Bool("json", false, "Print JSON instead of text")
		chunks   = fs.Bool("chunks", false, "List every chunk of every frame")
		logLevel = fs.String("log-level", getEnv(logLevelEnv, "info"), "Log level")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := SetLogLevel(*logLevel); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return errors.New("at least one file is required")
	}

	reports := make([]fileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			r, err := inspect(path, data, *chunks)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printReport(w, r)
	}
	return nil
}

// inspect walks a whole document. Payload errors are reported per chunk
// and a walk that stops early is reported per frame or per file; only a
// bad file header fails.
func inspect(path string, data []byte, withChunks bool) (fileReport, error) {
	doc, err := aseview.Decode(data, aseview.WithLogger(log.Logger.With().Str("file", path).Logger()))
	if err != nil {
		return fileReport{}, err
	}

	gw, gh := doc.GridSize()
	r := fileReport{
		File:             path,
		FileSize:         doc.FileSize(),
		Width:            int(doc.Width()),
		Height:           int(doc.Height()),
		ColorMode:        doc.ColorDepth().String(),
		Depth:            int(doc.ColorDepth()),
		Colors:           doc.NumColors(),
		Flags:            uint32(doc.Flags()),
		Speed:            int(doc.Speed()),
		TransparentIndex: int(doc.TransparentIndex()),
		PixelRatio:       doc.PixelRatio(),
		GridWidth:        int(gw),
		GridHeight:       int(gh),
		FrameCount:       int(doc.FrameCount()),
	}

	frames := doc.Frames()
	for f := range frames.All() {
		fr := frameReport{
			Index:      f.Index,
			DurationMS: int(f.DurationMillis()),
			ChunkCount: int(f.ChunkCount()),
		}
		walker := f.Chunks()
		for c := range walker.All() {
			detail := describe(c, &r)
			if withChunks {
				fr.Chunks = append(fr.Chunks, chunkReport{Type: c.Type().String(), Size: c.Size(), Detail: detail})
			}
		}
		if err := walker.Err(); err != nil {
			fr.Error = err.Error()
		}
		r.Frames = append(r.Frames, fr)
	}
	if err := frames.Err(); err != nil {
		r.Error = err.Error()
	}
	return r, nil
}

// describe decodes a chunk payload into a one-line summary, collecting
// layers into r on the way. A layer chunk that fails to decode still takes
// its slot, so indexes keep matching the layer index stored in cels.
func describe(c aseview.Chunk, r *fileReport) string {
	p, err := c.Payload()
	if err != nil {
		if c.Type() == aseview.ChunkTypeLayer {
			r.Layers = append(r.Layers, layerReport{Index: len(r.Layers), Error: err.Error()})
		}
		return err.Error()
	}
	switch p := p.(type) {
	case aseview.Layer:
		r.Layers = append(r.Layers, layerReport{
			Index:     len(r.Layers),
			Name:      p.Name(),
			Level:     int(p.ChildLevel()),
			Type:      p.Type().String(),
			BlendMode: p.BlendMode().String(),
			Opacity:   int(p.Opacity()),
			Flags:     p.Flags().String(),
		})
		return fmt.Sprintf("%q %s", p.Name(), p.Type())
	case aseview.Cel:
		x, y := p.Position()
		s := fmt.Sprintf("layer %d at (%d, %d) %s", p.LayerIndex(), x, y, p.Type())
		if raw, ok := p.Raw(); ok {
			s += fmt.Sprintf(" %dx%d", raw.Width(), raw.Height())
		}
		if link, ok := p.Linked(); ok {
			s += fmt.Sprintf(" -> frame %d", link.Frame)
		}
		return s
	default:
		return ""
	}
}

func printReport(w io.Writer, r fileReport) {
	fmt.Fprintf(w, "File: %s\n", r.File)
	fmt.Fprintln(w, "Sprite Information:")
	fmt.Fprintln(w, "===================")
	fmt.Fprintf(w, "Size: %d x %d pixels (%s)\n", r.Width, r.Height, formatFileSize(r.FileSize))
	fmt.Fprintf(w, "Type: colormode %s, colors %d, depth %d bpp\n", r.ColorMode, r.Colors, r.Depth)
	fmt.Fprintf(w, "Flags: %d\n", r.Flags)
	fmt.Fprintf(w, "Speed: %d ms between frames\n", r.Speed)
	fmt.Fprintf(w, "Transparent Index: %d\n", r.TransparentIndex)
	fmt.Fprintf(w, "Aspect Ratio: %s\n", r.PixelRatio)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.GridWidth, r.GridHeight)
	fmt.Fprintf(w, "Number of Frames: %d\n", r.FrameCount)
	if r.Error != "" {
		fmt.Fprintf(w, "Read %d frames, stopped: %s\n", len(r.Frames), r.Error)
	}

	fmt.Fprintln(w)
	printLayers(w, r.Layers)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Frame  Duration  Chunks")
	fmt.Fprintln(w, "-----------------------")
	for _, f := range r.Frames {
		fmt.Fprintf(w, "%5d  %6dms  %6d\n", f.Index, f.DurationMS, f.ChunkCount)
		for _, c := range f.Chunks {
			fmt.Fprintf(w, "         %-14s %6d bytes  %s\n", c.Type, c.Size, c.Detail)
		}
		if f.Error != "" {
			fmt.Fprintf(w, "         stopped: %s\n", f.Error)
		}
	}
}

// printLayers prints the layer hierarchy, one level of indent per child
// level.
func printLayers(w io.Writer, layers []layerReport) {
	fmt.Fprintln(w, "Layer name and hierarchy      Layer index")
	fmt.Fprintln(w, "-----------------------------------------------")
	for i, layer := range layers {
		indent := strings.Repeat("  ", layer.Level)
		prefix := "- "
		if i > 0 && layers[i-1].Level < layer.Level {
			prefix = "`- "
		} else if i > 0 && layers[i-1].Level == layer.Level {
			prefix = "|- "
		}
		name := layer.Name
		if layer.Error != "" {
			name = "(unreadable: " + layer.Error + ")"
		}
		fmt.Fprintf(w, "%s%s%s                  %d\n", indent, prefix, name, layer.Index)
	}
}
