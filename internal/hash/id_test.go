package hash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupID(t *testing.T) {
	tests := []struct {
		name string
		key  string
		id   uint64
	}{
		{"root group", "", 0xef46db3751d8e999},
		{"connection label", "12_34", GroupID("12_34")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, GroupID(tt.key))
		})
	}
}

func TestGroupIDDistinct(t *testing.T) {
	seen := make(map[uint64]string)
	for a := range 20 {
		for b := range 20 {
			key := fmt.Sprintf("%d_%d", a, b)
			id := GroupID(key)
			prev, dup := seen[id]
			assert.False(t, dup, "hash collision between %q and %q", prev, key)
			seen[id] = key
		}
	}
}

func BenchmarkGroupID(b *testing.B) {
	for b.Loop() {
		GroupID("102_4023")
	}
}
