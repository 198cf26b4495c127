package whiteboard

import "errors"

// Common errors returned by Session operations.
var (
	// ErrLocked is returned when a mutation or navigation is attempted on a
	// locked canvas.
	ErrLocked = errors.New("whiteboard: canvas is locked")

	// ErrClosed is returned when operations are attempted on a closed session.
	ErrClosed = errors.New("whiteboard: session is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("whiteboard: invalid dimensions")

	// ErrInvalidDataURI is returned when a serialized image is not a PNG
	// data URI or cannot be decoded.
	ErrInvalidDataURI = errors.New("whiteboard: invalid image data URI")

	// ErrUnknownCommand is returned by Dispatch for unrecognized commands.
	ErrUnknownCommand = errors.New("whiteboard: unknown command")

	// ErrUnknownName is returned when a tool, shape or pattern name does not
	// parse.
	ErrUnknownName = errors.New("whiteboard: unknown name")
)
