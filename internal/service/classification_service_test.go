package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"go-ekyc-verifier/internal/classifier"
	apperrors "go-ekyc-verifier/internal/errors"
)

type fakeCache struct {
	store    map[string]string
	getErr   error
	setErr   error
	getCalls int
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.getCalls++
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.store[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return value, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.store[key] = value
	return nil
}

func trainedHandle(t *testing.T) *classifier.ModelHandle {
	t.Helper()
	vectorizer := classifier.NewTfidfVectorizer(5000)
	vectorizer.Fit([]string{
		"invoice payment total",
		"passport visa stamp",
	})

	x := mat.NewDense(2, len(vectorizer.IDF), nil)
	x.SetRow(0, vectorizer.Transform("invoice payment total"))
	x.SetRow(1, vectorizer.Transform("passport visa stamp"))

	model := classifier.NewSoftmaxClassifier(200, 0.5)
	model.Fit(x, []int{0, 1}, []string{"invoice", "passport"})

	handle := classifier.NewModelHandle()
	handle.Swap(classifier.NewArtifact(vectorizer, model))
	return handle
}

func TestClassify(t *testing.T) {
	handle := trainedHandle(t)
	svc := NewClassificationService(&fakeExtractor{text: "invoice payment total"}, handle, nil, 0)

	response, err := svc.Classify(context.Background(), []byte("image"))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if response.Label != "invoice" {
		t.Errorf("Label = %q, want %q", response.Label, "invoice")
	}
	if response.Confidence <= 0 || response.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0, 1]", response.Confidence)
	}
	if response.ModelID != handle.Current().ID {
		t.Errorf("ModelID = %q, want the serving artifact's ID", response.ModelID)
	}
	if response.Cached {
		t.Error("Expected an uncached response without a cache configured")
	}
	if !strings.Contains(response.TextSnippet, "invoice") {
		t.Errorf("TextSnippet = %q", response.TextSnippet)
	}
}

func TestClassifyURL(t *testing.T) {
	handle := trainedHandle(t)
	cache := newFakeCache()
	svc := NewClassificationService(&fakeExtractor{text: "passport visa stamp"}, handle, cache, time.Minute)

	response, err := svc.ClassifyURL(context.Background(), "https://example.com/scan.png")
	if err != nil {
		t.Fatalf("ClassifyURL failed: %v", err)
	}
	if response.Label != "passport" {
		t.Errorf("Label = %q, want %q", response.Label, "passport")
	}
	if response.Cached {
		t.Error("First URL classification must be a cache miss")
	}

	// The same URL is served from cache on the next request
	again, err := svc.ClassifyURL(context.Background(), "https://example.com/scan.png")
	if err != nil {
		t.Fatalf("Second ClassifyURL failed: %v", err)
	}
	if !again.Cached {
		t.Error("Repeated URL classification must hit the cache")
	}
}

func TestClassify_NoModel(t *testing.T) {
	svc := NewClassificationService(&fakeExtractor{text: "anything"}, classifier.NewModelHandle(), nil, 0)

	_, err := svc.Classify(context.Background(), []byte("image"))
	if !apperrors.IsType(err, apperrors.ErrorTypeModelNotTrained) {
		t.Errorf("Expected model-not-trained error, got %v", err)
	}
}

func TestClassify_CacheReadThrough(t *testing.T) {
	handle := trainedHandle(t)
	cache := newFakeCache()
	svc := NewClassificationService(&fakeExtractor{text: "invoice payment total"}, handle, cache, time.Minute)

	first, err := svc.Classify(context.Background(), []byte("image"))
	if err != nil {
		t.Fatalf("First Classify failed: %v", err)
	}
	if first.Cached {
		t.Error("First response must be a cache miss")
	}
	if cache.setCalls != 1 {
		t.Errorf("Cache writes = %d, want 1", cache.setCalls)
	}

	second, err := svc.Classify(context.Background(), []byte("image"))
	if err != nil {
		t.Fatalf("Second Classify failed: %v", err)
	}
	if !second.Cached {
		t.Error("Second response for the same image must be served from cache")
	}
	if second.Label != first.Label || second.Confidence != first.Confidence {
		t.Errorf("Cached response (%q, %v) differs from original (%q, %v)",
			second.Label, second.Confidence, first.Label, first.Confidence)
	}
	if second.RequestID == first.RequestID {
		t.Error("Cached responses must still carry a fresh request ID")
	}

	// A different image digest misses the cache
	third, err := svc.Classify(context.Background(), []byte("other image"))
	if err != nil {
		t.Fatalf("Third Classify failed: %v", err)
	}
	if third.Cached {
		t.Error("A different image must not hit the first image's cache entry")
	}
}

func TestClassify_CacheFailureDegrades(t *testing.T) {
	handle := trainedHandle(t)
	cache := newFakeCache()
	cache.getErr = context.DeadlineExceeded
	cache.setErr = context.DeadlineExceeded
	svc := NewClassificationService(&fakeExtractor{text: "passport visa stamp"}, handle, cache, time.Minute)

	response, err := svc.Classify(context.Background(), []byte("image"))
	if err != nil {
		t.Fatalf("Cache failures must degrade to direct inference: %v", err)
	}
	if response.Label != "passport" {
		t.Errorf("Label = %q, want %q", response.Label, "passport")
	}
	if response.Cached {
		t.Error("Expected an uncached response when the cache is failing")
	}
}

func TestReloadModel(t *testing.T) {
	registry := classifier.NewFileRegistry(filepath.Join(t.TempDir(), "model.gob"))
	handle := classifier.NewModelHandle()
	svc := NewClassificationService(&fakeExtractor{text: "anything"}, handle, nil, 0)

	if _, err := svc.ReloadModel(context.Background(), registry); err == nil {
		t.Fatal("Expected reload to fail with no persisted artifact")
	}

	trained := trainedHandle(t).Current()
	if err := registry.Save(context.Background(), trained); err != nil {
		t.Fatal(err)
	}

	artifact, err := svc.ReloadModel(context.Background(), registry)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if artifact.ID != trained.ID {
		t.Errorf("Reloaded artifact ID = %q, want %q", artifact.ID, trained.ID)
	}
	if handle.Current() == nil {
		t.Fatal("Expected the artifact to be serving after reload")
	}
}
