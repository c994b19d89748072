package spell

import "errors"

// Errors returned by the engine and its handles.
var (
	// ErrInvalidText indicates a line that is not valid UTF-8. The line is
	// rejected before tokenization and the engine is left unchanged.
	ErrInvalidText = errors.New("line is not valid UTF-8")

	// ErrIndexOutOfRange indicates a token or line id lookup past the end of a handle.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrHandleReleased indicates use of a handle after Release.
	ErrHandleReleased = errors.New("handle already released")

	// ErrEngineClosed indicates use of an engine, or a handle derived from it, after Close.
	ErrEngineClosed = errors.New("engine is closed")
)
