package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventIDFromKey(t *testing.T) {
	cases := map[string]int64{
		eventDeleteKey(7):              7,
		attendanceKey(8, 10):           8,
		registrationKey(9, "a@b.c"):    9,
		feedbackKey(10, "a@b.c"):       10,
		eventCreateKey("C1", "X", "d"): 0,
		"attendance:abc:1":             0,
	}
	for key, want := range cases {
		id, ok := eventIDFromKey(key)
		assert.Equal(t, want != 0, ok, key)
		assert.Equal(t, want, id, key)
	}
	assert.True(t, eventListScope(eventCreateKey("C1", "X", "d")))
	assert.False(t, eventListScope(feedbackKey(1, "a@b.c")))
}

func TestSummaryCacheKeyStaysOutsideReportsPrefix(t *testing.T) {
	assert.Equal(t, "summary:event:7", summaryCacheKey(7))
	assert.NotContains(t, summaryCacheKey(7), reportsCachePrefix)
}
