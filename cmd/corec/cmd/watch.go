package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchAndRerun runs fn once immediately, then again every time one of
// files changes on disk, until the process is interrupted. It watches each
// file's containing directory rather than the file itself, since editors
// commonly replace a file (rename-over-write) rather than modify it in
// place, an event fsnotify only reports reliably at the directory level.
func watchAndRerun(files []string, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	dirs := map[string]bool{}
	for _, f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: %w", err)
		}
	}

	watched := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		watched[abs] = true
	}

	runOnce := func() {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}

	runOnce()
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				abs = ev.Name
			}
			if watched[abs] {
				fmt.Fprintf(os.Stderr, "\n--- %s changed, recompiling ---\n", ev.Name)
				runOnce()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
