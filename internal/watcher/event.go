package watcher

import (
	"log/slog"
	"time"
)

// EventType names what happened to a dropped results file.
type EventType string

const (
	EventAdded    EventType = "added"
	EventModified EventType = "modified"
	EventRemoved  EventType = "removed"
)

// Event is emitted once a file has stopped changing for the settle delay,
// or immediately when it disappears. Size and ModTime are zero for
// EventRemoved.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}

// Importable reports whether the file behind e still exists and can be read.
func (e Event) Importable() bool {
	return e.Type == EventAdded || e.Type == EventModified
}

func (e Event) LogValue() slog.Value {
	if !e.Importable() {
		return slog.GroupValue(slog.String("type", string(e.Type)), slog.String("path", e.Path))
	}
	return slog.GroupValue(
		slog.String("type", string(e.Type)),
		slog.String("path", e.Path),
		slog.Int64("size", e.Size),
	)
}
