package notification

import (
	"github.com/kazz187/wetracker/internal/profile"
	"github.com/kazz187/wetracker/internal/task"
)

// ResolvedTask is a task with its assignee and creator profiles loaded.
// Either profile is nil when the reference is empty or could not be loaded.
type ResolvedTask struct {
	*task.Task
	Assignee *profile.Profile
	Creator  *profile.Profile
}

// SelectRecipients returns the candidates for an event before preferences are
// applied. The actor is never among them. everyone is only consulted for
// task_created.
func SelectRecipients(kind EventKind, t *ResolvedTask, actorID string, everyone []*profile.Profile) []*profile.Profile {
	var out []*profile.Profile
	switch kind {
	case KindTaskCreated:
		seen := make(map[string]struct{}, len(everyone))
		for _, p := range everyone {
			if p == nil || p.ID == actorID {
				continue
			}
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	case KindTaskAssigned:
		if t.Assignee != nil && t.Assignee.ID != actorID {
			out = append(out, t.Assignee)
		}
	case KindCommentAdded, KindStatusChanged:
		if t.Creator != nil && t.Creator.ID != actorID {
			out = append(out, t.Creator)
		}
		if t.Assignee != nil && t.Assignee.ID != actorID && t.Assignee.ID != t.CreatedBy {
			out = append(out, t.Assignee)
		}
	}
	return out
}
