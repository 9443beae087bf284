package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/graph"
)

// Sink persists or renders a graph after a dry run.
type Sink interface {
	Persist(ctx context.Context, g *graph.Graph) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, g *graph.Graph) error

func (f SinkFunc) Persist(ctx context.Context, g *graph.Graph) error { return f(ctx, g) }

// DOTWriter renders the graph to w.
func DOTWriter(w io.Writer) Sink {
	return SinkFunc(func(_ context.Context, g *graph.Graph) error {
		return g.WriteDOT(w)
	})
}

// DOTFile writes the Graphviz rendering to path.
func DOTFile(path string) Sink {
	return SinkFunc(func(ctx context.Context, g *graph.Graph) error {
		return writeFile(ctx, path, g.WriteDOT)
	})
}

// SnapshotFile writes the YAML snapshot of the graph to path.
func SnapshotFile(path string) Sink {
	return SinkFunc(func(ctx context.Context, g *graph.Graph) error {
		return writeFile(ctx, path, func(w io.Writer) error {
			return graph.WriteSnapshot(w, g.Snapshot())
		})
	})
}

func writeFile(ctx context.Context, path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("Graph written", "path", path)
	return nil
}
