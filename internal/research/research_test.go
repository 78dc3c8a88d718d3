package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/meetinglogs/internal/merge"
	"github.com/grovetools/meetinglogs/internal/segment"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "craig, google it", Normalize("Quag, google it"))
	assert.Equal(t, "ok craig search", Normalize("ok creg search"))
	assert.Equal(t, "cragged", Normalize("cragged"))
}

func TestMatch(t *testing.T) {
	e := NewExtractor(nil, nil)

	cases := []struct {
		text  string
		query string
		ok    bool
	}{
		{"Craig, google vector databases", "vector databases", true},
		{"so graig: look up the Q3 numbers please", "the Q3 numbers please", true},
		{"crag-search pricing", "pricing", true},
		{"Craig research", "", false},
		{"let's google that later", "", false},
		{"craig find   ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			q, ok := e.Match(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.query, q)
		})
	}
}

func TestCustomTriggers(t *testing.T) {
	e := NewExtractor([]string{"jarvis"}, []string{"fetch"})
	q, ok := e.Match("Jarvis, fetch the roadmap")
	require.True(t, ok)
	assert.Equal(t, "the roadmap", q)

	_, ok = e.Match("craig, google the roadmap")
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	a, err := segment.New("ann", 75, 80, "Craig, search competitor pricing")
	require.NoError(t, err)
	b, err := segment.New("bo", 90, 95, "nothing to see")
	require.NoError(t, err)

	reqs := NewExtractor(nil, nil).Extract(merge.FromSorted([]segment.Segment{a, b}))
	assert.Equal(t, []Request{{TS: "00:01:15", Speaker: "ann", Query: "competitor pricing"}}, reqs)
}
