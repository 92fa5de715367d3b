package notification

import "github.com/kazz187/wetracker/internal/profile"

// ShouldNotify applies the recipient's preferences: the master switch AND the
// category switch for kind must both be on. task_created shares the
// assignment switch.
func ShouldNotify(p *profile.Profile, kind EventKind) bool {
	if p == nil || !p.EmailNotifications {
		return false
	}
	switch kind {
	case KindTaskCreated, KindTaskAssigned:
		return p.NotifyOnAssignment
	case KindCommentAdded:
		return p.NotifyOnComments
	case KindStatusChanged:
		return p.NotifyOnStatusChange
	}
	return false
}
