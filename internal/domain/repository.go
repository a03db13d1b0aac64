package domain

import "context"

// HolidayRepository defines persistence for holiday entries.
type HolidayRepository interface {
	Create(ctx context.Context, holiday *Holiday) (string, error)
	GetAll(ctx context.Context) ([]Holiday, error)
	GetByID(ctx context.Context, id string) (*Holiday, error)
	// GetByDate returns nil without error when no entry matches the date.
	GetByDate(ctx context.Context, date string) (*Holiday, error)
	Update(ctx context.Context, id string, upd HolidayUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// SubscriberRepository defines persistence for subscribers. GetAll and GetByID
// return the public view without image bytes; the raw variants include them.
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *Subscriber) (string, error)
	GetAll(ctx context.Context) ([]Subscriber, error)
	GetAllRaw(ctx context.Context) ([]Subscriber, error)
	GetByID(ctx context.Context, id string) (*Subscriber, error)
	GetByIDRaw(ctx context.Context, id string) (*Subscriber, error)
	Update(ctx context.Context, id string, upd SubscriberUpdate) error
	Delete(ctx context.Context, id string) error
}
