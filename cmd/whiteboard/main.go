// Command whiteboard is a desktop whiteboard with multiple boards and pages.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/gogpu/gg"

	"github.com/gogpu/whiteboard"
	"github.com/gogpu/whiteboard/board"
	"github.com/gogpu/whiteboard/integration/fynecanvas"
)

const appTitle = "Whiteboard"

func main() {
	var (
		width   = flag.Int("width", 1024, "canvas width")
		height  = flag.Int("height", 700, "canvas height")
		outDir  = flag.String("out", ".", "directory for exported pages")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		whiteboard.SetLogger(l)
		gg.SetLogger(l)
	}

	a := app.New()
	w := a.NewWindow(appTitle)

	status := widget.NewLabel("")
	zoom := widget.NewLabel("100%")

	ws, err := board.NewWorkspace(board.NewStore(), *width, *height,
		board.WithExportFunc(func(name, uri string) {
			path := filepath.Join(*outDir, name)
			if err := saveDataURI(path, uri); err != nil {
				log.Printf("Export failed: %v", err)
				status.SetText("Export failed: " + err.Error())
				return
			}
			log.Printf("Exported %s", path)
			status.SetText("Exported " + path)
		}),
		board.WithSessionOptions(whiteboard.WithZoomHandler(func(z float64) {
			zoom.SetText(zoomText(z))
		})),
	)
	if err != nil {
		log.Fatalf("Failed to create workspace: %v", err)
	}

	c, err := fynecanvas.New(ws.Session())
	if err != nil {
		log.Fatalf("Failed to create canvas: %v", err)
	}
	ui := newControls(ws, c, status, zoom)
	c.Await(ws.Open(context.Background()))

	w.SetContent(container.NewBorder(ui.toolbar(), container.NewHBox(ui.pageBar(), status), nil, nil, c))
	w.Resize(fyne.NewSize(float32(*width), float32(*height)+96))
	w.SetOnClosed(func() {
		if err := ws.Close(); err != nil {
			log.Printf("Close: %v", err)
		}
	})
	w.ShowAndRun()
}

func saveDataURI(path, uri string) error {
	data, err := whiteboard.DecodeDataURIBytes(uri)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
