package corkboard

import "context"

// OpenResult is the outcome of StoragePort.OpenBoard. When Canceled is set
// the other fields are empty.
type OpenResult struct {
	Canceled bool
	Path     string
	Content  []byte
}

// SaveTarget is the outcome of StoragePort.ChooseSavePath.
type SaveTarget struct {
	Canceled bool
	Path     string
}

// SaveResult is delivered to Save and SaveAs callbacks.
type SaveResult struct {
	Canceled bool
	Path     string
}

// StoragePort is the only way the editor reaches persisted state. Calls may
// block; the editor never makes them on the control thread.
type StoragePort interface {
	// OpenBoard asks the user (or host) for a board to open.
	OpenBoard(ctx context.Context) (OpenResult, error)
	// ChooseSavePath asks where to save. suggested is the board title.
	ChooseSavePath(ctx context.Context, suggested string) (SaveTarget, error)
	// WriteFile stores content at path.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// RecentList is an ordered list of saved records addressed by index, with
// index 0 the most recent. Implementations must be safe for use from
// multiple goroutines.
type RecentList interface {
	Len(ctx context.Context) (int, error)
	// Record returns the record at index, or an error wrapping
	// ErrIndexOutOfRange.
	Record(ctx context.Context, index int) (Record, error)
	// Push records a save. An entry for the same board id is replaced.
	Push(ctx context.Context, rec Record) error
}
