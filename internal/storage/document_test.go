package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentLoadMissingFileReturnsZero(t *testing.T) {
	doc, err := NewDocument[[]string](filepath.Join(t.TempDir(), "nested", "items.json"))
	require.NoError(t, err)

	items, err := doc.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestDocumentUpdateAbortsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	doc, err := NewDocument[[]string](path)
	require.NoError(t, err)

	_, err = doc.Update(context.Background(), func(items *[]string) error {
		*items = append(*items, "first")
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = doc.Update(context.Background(), func(items *[]string) error {
		*items = append(*items, "second")
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := doc.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"first"}, items)

	_, statErr := os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(statErr))
}

func TestDocumentConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.json")
	first, err := NewDocument[int](path)
	require.NoError(t, err)
	second, err := NewDocument[int](path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		doc := first
		if i%2 == 0 {
			doc = second
		}
		go func(doc *Document[int]) {
			defer wg.Done()
			_, err := doc.Update(context.Background(), func(value *int) error {
				*value++
				return nil
			})
			require.NoError(t, err)
		}(doc)
	}
	wg.Wait()

	value, err := first.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 50, value)
}
