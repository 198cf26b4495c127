package whiteboard

import (
	"log/slog"

	"github.com/gogpu/gg/text"
)

// SessionOption configures a Session during creation.
//
// Example:
//
//	s, err := whiteboard.NewSession(800, 600,
//	    whiteboard.WithCommitHandler(func(uri string) { page.Data = uri }),
//	    whiteboard.WithZoomHandler(func(z float64) { label.SetText(fmt.Sprintf("%.0f%%", z*100)) }),
//	)
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	onCommit   func(dataURI string)
	onExport   func(dataURI string)
	onZoom     func(zoom float64)
	onPan      func(pan PanOffset)
	logger     *slog.Logger
	font       *text.FontSource
	pixelRatio float64
	style      Style
	background BackgroundSpec
}

func defaultSessionOptions() sessionOptions {
	return sessionOptions{
		pixelRatio: 1,
		style:      DefaultStyle(),
		background: DefaultBackground(),
	}
}

// WithCommitHandler sets the callback fired with the serialized committed
// surface after every commit: stroke end, shape end, text commit and clear.
// The host persists it against the current page.
func WithCommitHandler(fn func(dataURI string)) SessionOption {
	return func(o *sessionOptions) {
		o.onCommit = fn
	}
}

// WithExportHandler sets the callback fired once per ExportCommand with the
// flattened composite image.
func WithExportHandler(fn func(dataURI string)) SessionOption {
	return func(o *sessionOptions) {
		o.onExport = fn
	}
}

// WithZoomHandler sets the callback fired on every zoom change.
func WithZoomHandler(fn func(zoom float64)) SessionOption {
	return func(o *sessionOptions) {
		o.onZoom = fn
	}
}

// WithPanHandler sets the callback fired on every pan change.
func WithPanHandler(fn func(pan PanOffset)) SessionOption {
	return func(o *sessionOptions) {
		o.onPan = fn
	}
}

// WithLogger sets a session-scoped logger. When unset the package logger
// (see SetLogger) is used.
func WithLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// WithFontSource sets the font used by the text tool. The default is Go
// Regular.
func WithFontSource(src *text.FontSource) SessionOption {
	return func(o *sessionOptions) {
		o.font = src
	}
}

// WithPixelRatio sets the device pixel ratio used for the arrowhead minimum
// length. Values <= 0 are ignored.
func WithPixelRatio(r float64) SessionOption {
	return func(o *sessionOptions) {
		if r > 0 {
			o.pixelRatio = r
		}
	}
}

// WithStyle sets the initial style.
func WithStyle(s Style) SessionOption {
	return func(o *sessionOptions) {
		o.style = s
	}
}

// WithBackground sets the initial background.
func WithBackground(b BackgroundSpec) SessionOption {
	return func(o *sessionOptions) {
		o.background = b
	}
}
