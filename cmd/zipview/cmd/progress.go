package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/meigma/zipview"
	"github.com/meigma/zipview/task"
)

const progressInterval = 200 * time.Millisecond

// run executes fn on the runner and renders its progress to w until it
// finishes.
func run(ctx context.Context, w io.Writer, name string, fn task.Func) error {
	t := runner.Start(ctx, name, fn)
	if quiet {
		return t.Wait()
	}

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	shown := false
	for {
		select {
		case <-t.Done():
			if shown {
				fmt.Fprint(w, "\r\033[K")
			}
			return t.Wait()
		case <-ticker.C:
			if line := progressLine(t.Progress()); line != "" {
				fmt.Fprint(w, "\r\033[K"+line)
				shown = true
			}
		}
	}
}

func progressLine(ev zipview.ProgressEvent) string {
	if ev.Message == "" {
		return ""
	}
	if ev.Fraction < 0 {
		return ev.Message + " ..."
	}
	line := fmt.Sprintf("%s %3.0f%%", ev.Message, ev.Fraction*100)
	if ev.BytesTotal > 0 {
		line += fmt.Sprintf(" (%s of %s)", humanize.Bytes(ev.BytesDone), humanize.Bytes(ev.BytesTotal))
	}
	return line
}

// readArchive reads path on the runner.
func readArchive(ctx context.Context, w io.Writer, path string) (*zipview.Archive, error) {
	var a *zipview.Archive
	err := run(ctx, w, "read", func(ctx context.Context, progress zipview.ProgressFunc) error {
		var err error
		a, err = zipview.Read(ctx, path, zipview.WithLogger(logger), zipview.WithProgress(progress))
		return err
	})
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return a, nil
}
