package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Index holds both sides of a reconciliation loaded into memory.
type Index[D, S any] struct {
	Detected map[string]D
	Stored   map[string]S
}

// BuildIndex loads both sides concurrently.
func BuildIndex[D, S any](ctx context.Context, adapter Adapter[D, S]) (*Index[D, S], error) {
	var (
		detected    map[string]D
		stored      map[string]S
		detectedErr error
		storedErr   error
		wg          sync.WaitGroup
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		detected, detectedErr = adapter.LoadDetected(ctx)
	}()

	go func() {
		defer wg.Done()
		stored, storedErr = adapter.LoadStored(ctx)
	}()

	wg.Wait()

	if detectedErr != nil {
		return nil, fmt.Errorf("%s: load detected: %w", adapter.Name(), detectedErr)
	}
	if storedErr != nil {
		return nil, fmt.Errorf("%s: load stored: %w", adapter.Name(), storedErr)
	}

	if detected == nil {
		detected = map[string]D{}
	}
	if stored == nil {
		stored = map[string]S{}
	}

	return &Index[D, S]{Detected: detected, Stored: stored}, nil
}

// Reconcile returns one result per key present on either side, sorted by key.
func Reconcile[D, S any](ctx context.Context, adapter Adapter[D, S]) ([]Result, error) {
	index, err := BuildIndex(ctx, adapter)
	if err != nil {
		return nil, err
	}
	return resultsFromIndex(index, adapter), nil
}

func resultsFromIndex[D, S any](index *Index[D, S], adapter Adapter[D, S]) []Result {
	union := make(map[string]struct{}, len(index.Detected)+len(index.Stored))
	for key := range index.Detected {
		union[key] = struct{}{}
	}
	for key := range index.Stored {
		union[key] = struct{}{}
	}

	results := make([]Result, 0, len(union))
	for key := range union {
		results = append(results, buildResult(key, index, adapter))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})

	return results
}

// buildResult creates a Result for a single key.
func buildResult[D, S any](key string, index *Index[D, S], adapter Adapter[D, S]) Result {
	detected, detectedPresent := index.Detected[key]
	stored, storedPresent := index.Stored[key]

	result := Result{
		Key:             key,
		DetectedPresent: detectedPresent,
		StoredPresent:   storedPresent,
		Mismatch:        []string{},
	}

	var detectedPtr *D
	var storedPtr *S
	if detectedPresent {
		detectedPtr = &detected
	}
	if storedPresent {
		storedPtr = &stored
	}
	result.Name = adapter.ResolveName(detectedPtr, storedPtr)

	if detectedPresent && storedPresent {
		if mismatch := adapter.CompareFields(detected, stored); len(mismatch) > 0 {
			result.Mismatch = mismatch
		}
	}

	return result
}
