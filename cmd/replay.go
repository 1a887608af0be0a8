package cmd

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mindbot/process/compare"
)

const (
	debounceTick  = 250 * time.Millisecond
	debounceQuiet = 300 * time.Millisecond
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Recognize numbers in saved captures",
	Long: `replay runs the same normalize and recognize steps as the live loop on
image files in a directory and prints one line per file. With --watch it keeps
running and processes files as they are created or rewritten, e.g. the
diagnostic captures of a running bot.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		watch, _ := cmd.Flags().GetBool("watch")

		pool, err := compare.NewTesseractPool(cfg.OCRWorkers, cfg.OCRLanguage, cfg.OCRWhitelist, cfg.MinConfidence)
		if err != nil {
			return fmt.Errorf("start ocr: %w", err)
		}
		defer func() {
			if err := pool.Close(); err != nil {
				log.Warn().Err(err).Msg("close ocr workers")
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		names, err := imageFiles(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		replayFiles(ctx, pool, dir, names, out)
		if !watch {
			return nil
		}
		return watchDir(ctx, dir, func(name string) {
			replayFiles(ctx, pool, dir, []string{name}, out)
		})
	},
}

func init() {
	replayCmd.Flags().StringP("dir", "d", ".", "Directory with captured images")
	replayCmd.Flags().BoolP("watch", "w", false, "Keep watching the directory for new captures")
	rootCmd.AddCommand(replayCmd)
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// replayFiles decodes names under dir and recognizes them in one batch.
// Files that fail to decode are logged and skipped.
func replayFiles(ctx context.Context, r compare.Reader, dir string, names []string, w io.Writer) {
	imgs := make([]image.Image, 0, len(names))
	kept := make([]string, 0, len(names))
	for _, name := range names {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("decode failed")
			continue
		}
		imgs = append(imgs, img)
		kept = append(kept, name)
	}
	if len(imgs) == 0 {
		return
	}
	for i, res := range r.ReadAll(ctx, imgs...) {
		switch {
		case res.Err != nil:
			fmt.Fprintf(w, "%s\terror: %v\n", kept[i], res.Err)
		case !res.Reading.OK:
			fmt.Fprintf(w, "%s\t-\n", kept[i])
		default:
			fmt.Fprintf(w, "%s\t%d\n", kept[i], res.Reading.Value)
		}
	}
}

// watchDir calls fn for every image file created or rewritten in dir once it
// has been quiet for a moment. It returns when ctx is done.
func watchDir(ctx context.Context, dir string, fn func(name string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Info().Str("dir", dir).Msg("watching (debounced)")

	files := make(chan string, 64)
	go debounce(ctx, w.Events, w.Errors, files)
	for name := range files {
		fn(name)
	}
	return nil
}

// debounce forwards image file names from events to out after they have
// gone debounceQuiet without a further event. It closes out when ctx ends or
// the watcher shuts down.
func debounce(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, out chan<- string) {
	defer close(out)
	pending := map[string]time.Time{}
	ticker := time.NewTicker(debounceTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if isImageFile(name) {
				pending[name] = time.Now()
			}
		case now := <-ticker.C:
			for name, t := range pending {
				if now.Sub(t) > debounceQuiet {
					delete(pending, name)
					select {
					case out <- name:
					case <-ctx.Done():
						return
					}
				}
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}
