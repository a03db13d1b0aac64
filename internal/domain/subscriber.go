package domain

import "time"

// Subscriber is a messaging target with personalization assets. Overlay is a
// full-canvas branding layer blended over the generated image; Logo is a small
// badge pasted in the top-left corner. Either may be absent. The image bytes
// are excluded from JSON responses and only loaded through the raw repository
// methods.
type Subscriber struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	Mail      string    `json:"mail,omitempty"`
	Website   string    `json:"website,omitempty"`
	Overlay   []byte    `json:"-"`
	Logo      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriberUpdate carries the fields of a partial update. Nil pointers and
// empty byte slices leave the stored values unchanged.
type SubscriberUpdate struct {
	Phone   *string
	Name    *string
	Mail    *string
	Website *string
	Overlay []byte
	Logo    []byte
}

// IsEmpty reports whether the update would change nothing.
func (u SubscriberUpdate) IsEmpty() bool {
	return u.Phone == nil && u.Name == nil && u.Mail == nil && u.Website == nil &&
		len(u.Overlay) == 0 && len(u.Logo) == 0
}
