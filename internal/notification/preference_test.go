package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldNotify(t *testing.T) {
	tests := []struct {
		kind     EventKind
		category func(master, on bool) bool
	}{
		{KindTaskCreated, func(m, on bool) bool { return ShouldNotify(newProfile("p", m, on, true, true), KindTaskCreated) }},
		{KindTaskAssigned, func(m, on bool) bool { return ShouldNotify(newProfile("p", m, on, true, true), KindTaskAssigned) }},
		{KindCommentAdded, func(m, on bool) bool { return ShouldNotify(newProfile("p", m, true, on, true), KindCommentAdded) }},
		{KindStatusChanged, func(m, on bool) bool { return ShouldNotify(newProfile("p", m, true, true, on), KindStatusChanged) }},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.True(t, tt.category(true, true))
			assert.False(t, tt.category(true, false), "category off")
			assert.False(t, tt.category(false, true), "master off")
			assert.False(t, tt.category(false, false))
		})
	}
}

func TestShouldNotify_OnlyRelevantCategoryMatters(t *testing.T) {
	onlyComments := newProfile("p", true, false, true, false)
	assert.False(t, ShouldNotify(onlyComments, KindTaskCreated))
	assert.False(t, ShouldNotify(onlyComments, KindTaskAssigned))
	assert.True(t, ShouldNotify(onlyComments, KindCommentAdded))
	assert.False(t, ShouldNotify(onlyComments, KindStatusChanged))
}

func TestShouldNotify_Edge(t *testing.T) {
	assert.False(t, ShouldNotify(nil, KindTaskAssigned))
	assert.False(t, ShouldNotify(allOn("p"), EventKind("task_deleted")))
}
