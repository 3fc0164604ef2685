package device

import "context"

// Repository defines persistent storage operations for devices. Implementations
// enforce name uniqueness themselves and report violations as ErrDuplicateName;
// missing names are reported as ErrNotFound. Update and Delete return the
// record as it is after (Update) or was before (Delete) the write.
type Repository interface {
	List(ctx context.Context) ([]Device, error)
	FindByName(ctx context.Context, name string) (Device, error)
	Insert(ctx context.Context, d Device) error
	Update(ctx context.Context, name string, attrs Attributes) (Device, error)
	Delete(ctx context.Context, name string) (Device, error)
}
