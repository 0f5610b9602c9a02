package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTermSet(t *testing.T) {
	tests := []struct {
		name        string
		hits        []string
		context     []string
		wantHits    []string
		wantContext []string
	}{
		{
			name:        "plain terms",
			hits:        []string{"ABC-1"},
			context:     []string{"XYZ-2"},
			wantHits:    []string{"ABC-1"},
			wantContext: []string{"XYZ-2"},
		},
		{
			name:        "context overlapping hits is dropped",
			hits:        []string{"ABC-1", "DEF-2"},
			context:     []string{"abc-1", "GHI-3"},
			wantHits:    []string{"ABC-1", "DEF-2"},
			wantContext: []string{"GHI-3"},
		},
		{
			name:        "whitespace and empties trimmed",
			hits:        []string{"  ABC-1  ", "", "   "},
			context:     []string{"\tXYZ-2\n"},
			wantHits:    []string{"ABC-1"},
			wantContext: []string{"XYZ-2"},
		},
		{
			name:        "case-insensitive duplicates within a list",
			hits:        []string{"Alpha", "ALPHA", "alpha", "Beta"},
			context:     nil,
			wantHits:    []string{"Alpha", "Beta"},
			wantContext: nil,
		},
		{
			name:        "order preserved",
			hits:        []string{"c", "a", "b"},
			context:     []string{"z", "y"},
			wantHits:    []string{"c", "a", "b"},
			wantContext: []string{"z", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTermSet(tt.hits, tt.context)
			assert.Equal(t, tt.wantHits, ts.Hits)
			assert.Equal(t, tt.wantContext, ts.Context)
		})
	}
}

func TestTermSet_Disjoint(t *testing.T) {
	ts := NewTermSet([]string{"ABC-1", "DEF-2"}, []string{"DEF-2", "abc-1", "GHI-3"})

	seen := make(map[string]struct{})
	for _, h := range ts.Hits {
		seen[fold(h)] = struct{}{}
	}
	for _, c := range ts.Context {
		_, dup := seen[fold(c)]
		assert.False(t, dup, "context term %q also present in hits", c)
	}
}

func TestTermSet_All(t *testing.T) {
	ts := NewTermSet([]string{"a", "b"}, []string{"c"})
	assert.Equal(t, []string{"a", "b", "c"}, ts.All())
	assert.Equal(t, 3, ts.Len())
	assert.False(t, ts.IsEmpty())

	empty := NewTermSet(nil, []string{" ", ""})
	assert.True(t, empty.IsEmpty())
}

func TestTermSet_KindOf(t *testing.T) {
	ts := NewTermSet([]string{"ABC-1"}, []string{"XYZ-2"})

	assert.Equal(t, KindHit, ts.KindOf("ABC-1"))
	assert.Equal(t, KindHit, ts.KindOf("abc-1"))
	assert.Equal(t, KindContext, ts.KindOf("XYZ-2"))
	assert.Equal(t, KindContext, ts.KindOf("unknown"))
}
