// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/pkg/types"
)

func rec(journal, year, title string) types.PaperRecord {
	return types.PaperRecord{Journal: journal, Year: year, Title: title}
}

func TestAppendAndSnapshot(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, uint64(0), s.Generation())

	s.Append(rec("Econometrica", "2020", "A"), rec("Econometrica", "2021", "B"))
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, uint64(1), s.Generation())

	s.Append(rec("Journal of Econometrics", "2021", "C"))
	assert.Len(t, snap, 2, "earlier snapshot must not grow")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, uint64(2), s.Generation())
	assert.Equal(t, []string{"Econometrica", "Journal of Econometrics"}, s.Journals())
	assert.Equal(t, 2, s.Count("Econometrica"))
}

func TestAppendNothingKeepsGeneration(t *testing.T) {
	s := New()
	s.Append()
	assert.Equal(t, uint64(0), s.Generation())
}

func TestDuplicatesAreKept(t *testing.T) {
	s := New()
	r := rec("Econometrica", "2020", "A")
	s.Append(r)
	s.Append(r)
	assert.Equal(t, 2, s.Len())
}

func TestSnapshotNotOverwrittenByAppend(t *testing.T) {
	s := New()
	s.Append(rec("J", "2020", "first"))
	snap, gen := s.SnapshotAt()
	s.Append(rec("J", "2020", "second"))
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, "first", snap[0].Title)
	assert.Equal(t, 1, cap(snap))
}

func TestConcurrentAppend(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Append(rec("J", "2020", "t"))
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, s.Len())
	assert.Equal(t, uint64(800), s.Generation())
}
