package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"go-ekyc-verifier/internal/logger"
	"go-ekyc-verifier/internal/ocr"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// Builder produces a labeled corpus from a directory tree laid out as
// baseDir/<label>/<image files>; the folder name is the label.
type Builder struct {
	extractor ocr.TextExtractor
	workers   int
}

// NewBuilder creates a corpus builder. workers <= 0 uses the CPU count.
func NewBuilder(extractor ocr.TextExtractor, workers int) *Builder {
	return &Builder{extractor: extractor, workers: workers}
}

// Build walks the sample tree and OCRs every image concurrently.
// Rows keep their directory-walk order so corpus builds are reproducible.
func (b *Builder) Build(ctx context.Context, baseDir string) (Corpus, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, err
	}

	type job struct {
		index int
		path  string
		label string
	}
	var jobs []job
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()
		labelDir := filepath.Join(baseDir, label)
		files, err := os.ReadDir(labelDir)
		if err != nil {
			return nil, err
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
		for _, f := range files {
			if f.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
				continue
			}
			jobs = append(jobs, job{
				index: len(jobs),
				path:  filepath.Join(labelDir, f.Name()),
				label: label,
			})
		}
	}

	corpus := make(Corpus, len(jobs))
	var mu sync.Mutex

	pool := newWorkerPool(b.workers)
	pool.start()
	defer pool.close()

	for _, j := range jobs {
		j := j
		pool.submit(func() {
			if ctx.Err() != nil {
				return
			}
			logger.WithFields(logrus.Fields{
				"path":  j.path,
				"label": j.label,
			}).Debug("OCR training sample")

			text := ocr.FlattenText(b.extractor.ExtractFromFile(j.path))
			if text == "" {
				logger.WithField("path", j.path).Warn("Training sample produced no text")
			}

			mu.Lock()
			corpus[j.index] = Row{Filename: j.path, Label: j.label, Text: text}
			mu.Unlock()
		})
	}
	pool.wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return corpus, nil
}
