package ulid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidID(t *testing.T) {
	validULID := GenerateID()

	tests := []struct {
		id       string
		expected bool
	}{
		{validULID, true},
		{"0", false},
		{"invalidulid", false},
		{"01B4E6BXY0PRJ5G420D25MWQY!", false},
		// Decodable but not canonical: lowercase form is rejected.
		{"01hmxr1q4pzt9v2b3c4d5e6f7g", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidID(tt.id))
		})
	}
}

func TestGenerateID(t *testing.T) {
	t.Run("uniqueness", func(t *testing.T) {
		assert.NotEqual(t, GenerateID(), GenerateID())
	})

	t.Run("concurrent uniqueness", func(t *testing.T) {
		var wg sync.WaitGroup
		ids := make(map[string]struct{})
		mu := sync.Mutex{}

		numIDs := 1000

		wg.Add(numIDs)
		for i := 0; i < numIDs; i++ {
			go func() {
				defer wg.Done()
				id := GenerateID()
				mu.Lock()
				defer mu.Unlock()
				ids[id] = struct{}{}
			}()
		}

		wg.Wait()

		assert.Equal(t, numIDs, len(ids))
	})
}

func TestMockGenerator(t *testing.T) {
	MockGenerator("01HMXR1Q4PZT9V2B3C4D5E6F7G")
	defer ResetGenerator()

	assert.Equal(t, "01HMXR1Q4PZT9V2B3C4D5E6F7G", GenerateID())
	assert.Equal(t, "01HMXR1Q4PZT9V2B3C4D5E6F7G", GenerateID())
}
