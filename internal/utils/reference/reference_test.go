package reference

import (
	"strings"
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference_Format(t *testing.T) {
	g := NewGenerator()
	ref := g.NewReference()
	assert.Len(t, ref, len(Prefix)+26)
	assert.True(t, strings.HasPrefix(ref, Prefix))
	_, err := ulid.ParseStrict(strings.TrimPrefix(ref, Prefix))
	assert.NoError(t, err)
}

func TestNewReference_UniqueUnderConcurrency(t *testing.T) {
	const workers = 50
	const perWorker = 200 // 10,000 references in total

	g := NewGenerator()
	results := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results <- g.NewReference()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{}, workers*perWorker)
	for ref := range results {
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s", ref)
		seen[ref] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}
