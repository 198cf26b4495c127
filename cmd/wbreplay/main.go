// Command wbreplay replays a recorded whiteboard input script and writes the
// exported page as PNG.
//
// Usage:
//
//	wbreplay -script session.yaml -output page.png [-surface strokes.png] [-v]
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gg"

	"github.com/gogpu/whiteboard"
)

func main() {
	var (
		script  = flag.String("script", "", "input script (YAML or JSON), - for stdin")
		output  = flag.String("output", "whiteboard.png", "exported page output file")
		surface = flag.String("surface", "", "optional output file for the transparent committed surface")
		verbose = flag.Bool("v", false, "log gesture transitions and rendering at debug level")
	)
	flag.Parse()

	if *verbose {
		l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		whiteboard.SetLogger(l)
		gg.SetLogger(l)
	}
	if *script == "" {
		flag.Usage()
		os.Exit(2)
	}

	in := os.Stdin
	if *script != "-" {
		f, err := os.Open(*script)
		if err != nil {
			log.Fatalf("Failed to open script: %v", err)
		}
		defer f.Close()
		in = f
	}
	sc, err := ParseScript(in)
	if err != nil {
		log.Fatalf("Failed to parse script: %v", err)
	}

	var exported string
	s, err := Replay(context.Background(), sc, whiteboard.WithExportHandler(func(uri string) {
		exported = uri
	}))
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}
	defer s.Close()

	if exported == "" {
		img, err := s.Composite()
		if err != nil {
			log.Fatalf("Composite failed: %v", err)
		}
		if exported, err = whiteboard.EncodeDataURI(img); err != nil {
			log.Fatalf("Encode failed: %v", err)
		}
	}
	if err := writeDataURI(*output, exported); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Page saved to %s (%dx%d, %d events)\n", *output, sc.Width, sc.Height, len(sc.Events))

	if *surface != "" {
		uri, err := s.Snapshot()
		if err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
		if err := writeDataURI(*surface, uri); err != nil {
			log.Fatalf("Failed to save surface: %v", err)
		}
		log.Printf("Surface saved to %s\n", *surface)
	}
}

// writeDataURI writes the PNG payload of a data URI to path.
func writeDataURI(path, uri string) error {
	data, err := whiteboard.DecodeDataURIBytes(uri)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".png") {
		log.Printf("Warning: %s has no .png extension", path)
	}
	return os.WriteFile(path, data, 0o644)
}
