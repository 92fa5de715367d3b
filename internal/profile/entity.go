package profile

import "time"

// Profile is a user of the tracker together with their email notification
// preferences.
type Profile struct {
	ID        string `yaml:"id" db:"id" json:"id"`
	FullName  string `yaml:"full_name" db:"full_name" json:"fullName"`
	Email     string `yaml:"email" db:"email" json:"email"`
	AvatarURL string `yaml:"avatar_url" db:"avatar_url" json:"avatarUrl,omitempty"`

	// EmailNotifications is the master switch. The per-category flags only
	// take effect while it is on.
	EmailNotifications   bool `yaml:"email_notifications" db:"email_notifications" json:"emailNotifications"`
	NotifyOnAssignment   bool `yaml:"notify_on_assignment" db:"notify_on_assignment" json:"notifyOnAssignment"`
	NotifyOnComments     bool `yaml:"notify_on_comments" db:"notify_on_comments" json:"notifyOnComments"`
	NotifyOnStatusChange bool `yaml:"notify_on_status_change" db:"notify_on_status_change" json:"notifyOnStatusChange"`

	CreatedAt time.Time `yaml:"created_at" db:"created_at" json:"createdAt"`
}

// Preferences is the editable subset of a Profile.
type Preferences struct {
	EmailNotifications   bool `json:"emailNotifications"`
	NotifyOnAssignment   bool `json:"notifyOnAssignment"`
	NotifyOnComments     bool `json:"notifyOnComments"`
	NotifyOnStatusChange bool `json:"notifyOnStatusChange"`
}

// DefaultPreferences has every switch on, matching a freshly signed up user.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications:   true,
		NotifyOnAssignment:   true,
		NotifyOnComments:     true,
		NotifyOnStatusChange: true,
	}
}

func (p *Profile) Preferences() Preferences {
	return Preferences{
		EmailNotifications:   p.EmailNotifications,
		NotifyOnAssignment:   p.NotifyOnAssignment,
		NotifyOnComments:     p.NotifyOnComments,
		NotifyOnStatusChange: p.NotifyOnStatusChange,
	}
}

func (p *Profile) ApplyPreferences(prefs Preferences) {
	p.EmailNotifications = prefs.EmailNotifications
	p.NotifyOnAssignment = prefs.NotifyOnAssignment
	p.NotifyOnComments = prefs.NotifyOnComments
	p.NotifyOnStatusChange = prefs.NotifyOnStatusChange
}

// DisplayName returns the name to show in emails, or "" if the user never set one.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	return p.FullName
}
