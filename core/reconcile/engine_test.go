package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detectedItem struct {
	Name string
	Path string
}

type storedItem struct {
	ID   uint
	Name string
	Path string
}

// fakeAdapter is an in-memory adapter that also records mutations.
type fakeAdapter struct {
	detected    map[string]detectedItem
	stored      map[string]storedItem
	detectedErr error
	storedErr   error

	created   []string
	updated   []string
	removed   []string
	failOn    string
	batchUsed bool
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) LoadDetected(ctx context.Context) (map[string]detectedItem, error) {
	return f.detected, f.detectedErr
}

func (f *fakeAdapter) LoadStored(ctx context.Context) (map[string]storedItem, error) {
	return f.stored, f.storedErr
}

func (f *fakeAdapter) ResolveName(detected *detectedItem, stored *storedItem) string {
	if detected != nil {
		return detected.Name
	}
	if stored != nil {
		return stored.Name
	}
	return ""
}

func (f *fakeAdapter) CompareFields(detected detectedItem, stored storedItem) []string {
	var mismatch []string
	if detected.Path != stored.Path {
		mismatch = append(mismatch, fmt.Sprintf("path: detected=%s stored=%s", detected.Path, stored.Path))
	}
	return mismatch
}

func (f *fakeAdapter) Create(ctx context.Context, key string, detected detectedItem) error {
	if key == f.failOn {
		return errors.New("boom")
	}
	f.created = append(f.created, key)
	return nil
}

func (f *fakeAdapter) Update(ctx context.Context, key string, detected detectedItem, stored storedItem) error {
	if key == f.failOn {
		return errors.New("boom")
	}
	f.updated = append(f.updated, key)
	return nil
}

func (f *fakeAdapter) Remove(ctx context.Context, key string, stored storedItem) error {
	if key == f.failOn {
		return errors.New("boom")
	}
	f.removed = append(f.removed, key)
	return nil
}

// batchAdapter adds bulk removal on top of fakeAdapter.
type batchAdapter struct {
	*fakeAdapter
}

func (b batchAdapter) RemoveBatch(ctx context.Context, stored map[string]storedItem) error {
	b.batchUsed = true
	for key := range stored {
		b.removed = append(b.removed, key)
	}
	return nil
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		detected: map[string]detectedItem{
			"100": {Name: "Portal", Path: `C:\Games\Portal`},
			"200": {Name: "Hades", Path: `D:\Games\Hades`},
		},
		stored: map[string]storedItem{
			"200": {ID: 2, Name: "Hades", Path: `C:\Games\Hades`},
			"300": {ID: 3, Name: "Braid", Path: `C:\Games\Braid`},
		},
	}
}

func TestBuildIndex_ErrorHandling(t *testing.T) {
	tests := []struct {
		name        string
		detectedErr error
		storedErr   error
		expectErr   string
	}{
		{name: "detected load error", detectedErr: errors.New("scan failed"), expectErr: "fake: load detected: scan failed"},
		{name: "stored load error", storedErr: errors.New("db down"), expectErr: "fake: load stored: db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := &fakeAdapter{detectedErr: tt.detectedErr, storedErr: tt.storedErr}
			_, err := BuildIndex[detectedItem, storedItem](context.Background(), adapter)
			require.Error(t, err)
			assert.Equal(t, tt.expectErr, err.Error())
		})
	}
}

func TestBuildIndex_NilMapsBecomeEmpty(t *testing.T) {
	index, err := BuildIndex[detectedItem, storedItem](context.Background(), &fakeAdapter{})
	require.NoError(t, err)
	assert.NotNil(t, index.Detected)
	assert.NotNil(t, index.Stored)
}

func TestReconcile_Results(t *testing.T) {
	results, err := Reconcile[detectedItem, storedItem](context.Background(), newFakeAdapter())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "100", results[0].Key)
	assert.True(t, results[0].DetectedPresent)
	assert.False(t, results[0].StoredPresent)
	assert.Equal(t, "Portal", results[0].Name)
	assert.Empty(t, results[0].Mismatch)

	assert.Equal(t, "200", results[1].Key)
	assert.True(t, results[1].DetectedPresent)
	assert.True(t, results[1].StoredPresent)
	assert.Equal(t, []string{`path: detected=D:\Games\Hades stored=C:\Games\Hades`}, results[1].Mismatch)

	assert.Equal(t, "300", results[2].Key)
	assert.False(t, results[2].DetectedPresent)
	assert.True(t, results[2].StoredPresent)
	assert.Equal(t, "Braid", results[2].Name)
}
