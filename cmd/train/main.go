// Command train builds a labeled OCR corpus and fits the document
// classifier offline, out-of-band from serving. The fitted vectorizer
// and classifier are persisted together as one artifact; the serving
// process picks it up at startup or via /reload-model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go-ekyc-verifier/internal/classifier"
	"go-ekyc-verifier/internal/dataset"
	"go-ekyc-verifier/internal/ocr"
)

type trainOptions struct {
	samplesDir string
	corpusCSV  string
	corpusOut  string
	artifact   string
	language   string
	workers    int
	seed       int64
	maxIter    int
}

func main() {
	var opts trainOptions
	flag.StringVar(&opts.samplesDir, "samples", "samples", "directory of <label>/<image> training samples")
	flag.StringVar(&opts.corpusCSV, "corpus", "", "read the corpus from this CSV instead of running OCR")
	flag.StringVar(&opts.corpusOut, "corpus-out", "dataset.csv", "write the built corpus to this CSV ('' to skip)")
	flag.StringVar(&opts.artifact, "artifact", "doc_classifier.gob", "output path for the model artifact")
	flag.StringVar(&opts.language, "language", "eng", "OCR language")
	flag.IntVar(&opts.workers, "workers", 0, "concurrent OCR workers (0 = CPU count)")
	flag.Int64Var(&opts.seed, "seed", 42, "random seed for the train/test split")
	flag.IntVar(&opts.maxIter, "max-iter", 500, "maximum training iterations")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		log.Fatalf("Training failed: %v", err)
	}
}

// run owns the training lock; errors return through here so deferred
// cleanup releases the lock even on a failed run.
func run(ctx context.Context, opts trainOptions) error {
	corpus, err := loadCorpus(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to build corpus: %w", err)
	}
	fmt.Printf("Corpus: %d rows, %d labels\n", len(corpus), len(corpus.Labels()))

	registry := classifier.NewFileRegistry(opts.artifact)
	if err := registry.TryLock(); err != nil {
		return fmt.Errorf("training already in progress: %w", err)
	}
	defer registry.Unlock()

	trainOpts := classifier.DefaultTrainingOptions()
	trainOpts.Seed = opts.seed
	trainOpts.MaxIterations = opts.maxIter

	pipeline := classifier.NewTrainingPipeline(trainOpts)
	fitted, report, err := pipeline.Run(ctx, corpus, registry)
	if err != nil {
		return fmt.Errorf("stage %s: %w", pipeline.Stage(), err)
	}

	fmt.Println("\nEvaluation on held-out split:")
	fmt.Println(report.String())
	fmt.Printf("Saved artifact %s (model %s)\n", opts.artifact, fitted.ID)
	return nil
}

func loadCorpus(ctx context.Context, opts trainOptions) (dataset.Corpus, error) {
	if opts.corpusCSV != "" {
		f, err := os.Open(opts.corpusCSV)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dataset.ReadCSV(f)
	}

	extractor := ocr.NewGosseractExtractor(opts.language, nil, nil)
	builder := dataset.NewBuilder(extractor, opts.workers)
	corpus, err := builder.Build(ctx, opts.samplesDir)
	if err != nil {
		return nil, err
	}

	if opts.corpusOut != "" {
		f, err := os.Create(opts.corpusOut)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := dataset.WriteCSV(f, corpus); err != nil {
			return nil, err
		}
	}
	return corpus, nil
}
