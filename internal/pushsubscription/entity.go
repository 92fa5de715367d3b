package pushsubscription

import "time"

// Subscription is one browser endpoint registered by a profile for web push.
type Subscription struct {
	ID        string    `yaml:"id" json:"id"`
	ProfileID string    `yaml:"profile_id" json:"profileId"`
	Endpoint  string    `yaml:"endpoint" json:"endpoint"`
	P256dhKey string    `yaml:"p256dh_key" json:"p256dhKey"`
	AuthKey   string    `yaml:"auth_key" json:"authKey"`
	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
}
