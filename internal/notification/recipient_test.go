package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/internal/task"
)

func ids(ps []*profile.Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestSelectRecipients(t *testing.T) {
	alice, bob, carol := allOn("alice"), allOn("bob"), allOn("carol")
	everyone := []*profile.Profile{alice, bob, carol}

	resolved := func(creator, assignee *profile.Profile) *ResolvedTask {
		rt := &ResolvedTask{Task: &task.Task{ID: "t1"}, Creator: creator, Assignee: assignee}
		if creator != nil {
			rt.CreatedBy = creator.ID
		}
		if assignee != nil {
			rt.AssignedTo = assignee.ID
		}
		return rt
	}

	tests := []struct {
		name  string
		kind  EventKind
		task  *ResolvedTask
		actor string
		want  []string
	}{
		{
			name:  "task created broadcasts to everyone but the actor",
			kind:  KindTaskCreated,
			task:  resolved(alice, nil),
			actor: "alice",
			want:  []string{"bob", "carol"},
		},
		{
			name:  "task assigned goes to the assignee",
			kind:  KindTaskAssigned,
			task:  resolved(alice, bob),
			actor: "alice",
			want:  []string{"bob"},
		},
		{
			name:  "self assignment notifies nobody",
			kind:  KindTaskAssigned,
			task:  resolved(alice, bob),
			actor: "bob",
			want:  []string{},
		},
		{
			name:  "task assigned without assignee notifies nobody",
			kind:  KindTaskAssigned,
			task:  resolved(alice, nil),
			actor: "alice",
			want:  []string{},
		},
		{
			name:  "comment by a third party reaches creator and assignee",
			kind:  KindCommentAdded,
			task:  resolved(alice, bob),
			actor: "carol",
			want:  []string{"alice", "bob"},
		},
		{
			name:  "comment by the assignee reaches the creator only",
			kind:  KindCommentAdded,
			task:  resolved(alice, bob),
			actor: "bob",
			want:  []string{"alice"},
		},
		{
			name:  "creator who is also assignee is notified once",
			kind:  KindStatusChanged,
			task:  resolved(alice, alice),
			actor: "carol",
			want:  []string{"alice"},
		},
		{
			name:  "creator assignee acting on own task notifies nobody",
			kind:  KindCommentAdded,
			task:  resolved(alice, alice),
			actor: "alice",
			want:  []string{},
		},
		{
			name:  "unresolved creator still lets the assignee through",
			kind:  KindStatusChanged,
			task:  &ResolvedTask{Task: &task.Task{ID: "t1", CreatedBy: "ghost", AssignedTo: "bob"}, Assignee: bob},
			actor: "carol",
			want:  []string{"bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectRecipients(tt.kind, tt.task, tt.actor, everyone)
			assert.ElementsMatch(t, tt.want, ids(got))
		})
	}
}

func TestSelectRecipients_ActorNeverIncluded(t *testing.T) {
	people := []*profile.Profile{allOn("a"), allOn("b"), allOn("c")}
	kinds := []EventKind{KindTaskCreated, KindTaskAssigned, KindCommentAdded, KindStatusChanged}

	for _, kind := range kinds {
		for _, creator := range people {
			for _, assignee := range append(people, nil) {
				for _, actor := range people {
					rt := &ResolvedTask{Task: &task.Task{ID: "t", CreatedBy: creator.ID}, Creator: creator, Assignee: assignee}
					if assignee != nil {
						rt.AssignedTo = assignee.ID
					}
					got := ids(SelectRecipients(kind, rt, actor.ID, people))
					assert.NotContains(t, got, actor.ID, "kind=%s actor=%s", kind, actor.ID)

					seen := make(map[string]bool)
					for _, id := range got {
						assert.False(t, seen[id], "duplicate recipient %s for %s", id, kind)
						seen[id] = true
					}
				}
			}
		}
	}
}
