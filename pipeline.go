package colorcode

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/colorcode/bitmatrix"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

const (
	defaultThreshold = 128
	defaultWorkers   = 4
)

var errUnreadable = errors.New("colorcode: unreadable image")

var imageExtensions = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// Runner decodes captured images from disk against one session and records
// the results.
type Runner struct {
	db       *ResultsDB
	logger   *log.Logger
	session  *Session
	detector Detector

	// Threshold binarizes each channel, values below it are black.
	Threshold uint8
	// Workers is the number of images decoded concurrently by Scan.
	Workers int
	// Observe returns the observer used while decoding file. The default
	// logs through the runner's logger.
	Observe func(file string) Observer
}

// NewRunner returns a Runner. db may be nil, in which case nothing is
// recorded.
func NewRunner(db *ResultsDB, logger *log.Logger, session *Session, detector Detector) *Runner {
	r := &Runner{
		db:        db,
		logger:    logger,
		session:   session,
		detector:  detector,
		Threshold: defaultThreshold,
		Workers:   defaultWorkers,
	}
	r.Observe = func(string) Observer {
		return LogObserver{Logger: r.logger}
	}
	return r
}

// DecodeImage binarizes img and decodes it.
func (r *Runner) DecodeImage(img image.Image, observer Observer) (*Summary, error) {
	var m [3]*bitmatrix.BitMatrix
	for i, ch := range []bitmatrix.Channel{bitmatrix.Red, bitmatrix.Green, bitmatrix.Blue} {
		var err error
		if m[i], err = bitmatrix.FromImage(img, ch, r.Threshold); err != nil {
			return nil, err
		}
	}
	return NewDecoder(r.session, r.detector, observer).Decode(img, m[0], m[1], m[2])
}

// DecodeFile loads, decodes and records the image in file.
func (r *Runner) DecodeFile(file string) (*Summary, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUnreadable, file, err)
	}

	summary, err := r.DecodeImage(img, r.Observe(file))
	if err != nil {
		return nil, err
	}

	if r.db != nil {
		if _, err := r.db.Record(file, r.session.Reference().Source(), summary); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

func (r *Runner) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !imageExtensions[strings.ToLower(filepath.Ext(file))] {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (r *Runner) imageWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			summary, err := r.DecodeFile(file)
			switch {
			case errors.Is(err, ErrDetectionFailed), errors.Is(err, errUnreadable):
				r.logger.Printf("Skipping \"%s\": %v\n", file, err)
				continue
			case err != nil:
				errc <- err
				return
			}

			passed := 0
			for _, a := range summary.Attempts {
				if a.Passed() {
					passed++
				}
			}
			r.logger.Printf("Decoded \"%s\": %d/%d attempts passed\n", file, passed, len(summary.Attempts))
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan decodes every image found under path.
func (r *Runner) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := r.findImages(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		errc, err := r.imageWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
