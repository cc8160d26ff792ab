package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"zoneboard/internal/score"
)

// Sink accepts the finished leaderboard document. A failed publish is
// fatal for the scoring run; sinks do their own retrying if they want
// any.
type Sink interface {
	Publish(ctx context.Context, doc *score.Document) error
}

// File writes the document as indented JSON to a local path. Useful for
// development and as the default when no GitHub credentials are set.
type File struct {
	Path string
}

// Publish writes the document to f.Path, replacing any previous copy.
func (f *File) Publish(_ context.Context, doc *score.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding leaderboard: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return nil
}
