package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterLatestWins(t *testing.T) {
	var mu sync.Mutex
	var applied []int
	release := make(chan struct{})
	first := true

	w := NewWriter(func(op writeOp) {
		mu.Lock()
		block := first
		first = false
		mu.Unlock()
		if block {
			<-release
		}
		mu.Lock()
		applied = append(applied, len(op.records))
		mu.Unlock()
	})
	defer w.Close()

	w.submit(writeOp{records: make([]Record, 1)})
	// Let the first op start and block, then queue several replacements
	for i := 2; i <= 5; i++ {
		w.submit(writeOp{records: make([]Record, i)})
	}
	close(release)
	w.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, applied)
	assert.LessOrEqual(t, len(applied), 5)
	assert.Equal(t, 5, applied[len(applied)-1], "last submitted snapshot must be written last")
}

func TestWriterCloseDrains(t *testing.T) {
	var got int
	w := NewWriter(func(op writeOp) { got = len(op.records) })
	w.submit(writeOp{records: make([]Record, 3)})
	w.Close()
	assert.Equal(t, 3, got)

	// Submissions after Close run inline
	w.submit(writeOp{records: make([]Record, 4)})
	assert.Equal(t, 4, got)
	w.Close()
}
