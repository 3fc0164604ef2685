package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	devicedomain "github.com/micro-ha/device-inventory/internal/domain/device"
)

var withoutID = bson.D{{Key: "_id", Value: 0}}

// DeviceRepository is MongoDB implementation of device.Repository.
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates mongo-backed device repository.
func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// List returns all devices ordered by name.
func (r *DeviceRepository) List(ctx context.Context) ([]devicedomain.Device, error) {
	opts := options.Find().SetProjection(withoutID).SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.db.devices.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find devices: %w", err)
	}
	items := make([]devicedomain.Device, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}
	return items, nil
}

// FindByName returns one device or device.ErrNotFound.
func (r *DeviceRepository) FindByName(ctx context.Context, name string) (devicedomain.Device, error) {
	var d devicedomain.Device
	err := r.db.devices.FindOne(ctx, byName(name), options.FindOne().SetProjection(withoutID)).Decode(&d)
	return d, translate(err)
}

// Insert stores a new device; the unique name index rejects duplicates.
func (r *DeviceRepository) Insert(ctx context.Context, d devicedomain.Device) error {
	_, err := r.db.devices.InsertOne(ctx, d)
	return translate(err)
}

// Update atomically replaces the mutable attributes and returns the new record.
func (r *DeviceRepository) Update(ctx context.Context, name string, attrs devicedomain.Attributes) (devicedomain.Device, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutID)
	var d devicedomain.Device
	err := r.db.devices.FindOneAndUpdate(ctx, byName(name), bson.D{{Key: "$set", Value: attrs}}, opts).Decode(&d)
	return d, translate(err)
}

// Delete atomically removes a device and returns the removed record.
func (r *DeviceRepository) Delete(ctx context.Context, name string) (devicedomain.Device, error) {
	var d devicedomain.Device
	err := r.db.devices.FindOneAndDelete(ctx, byName(name), options.FindOneAndDelete().SetProjection(withoutID)).Decode(&d)
	return d, translate(err)
}

func byName(name string) bson.D {
	return bson.D{{Key: "name", Value: name}}
}

// translate maps driver outcomes onto repository sentinels, keeping the
// driver error in the chain for logs.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return devicedomain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", devicedomain.ErrDuplicateName, err)
	default:
		return err
	}
}
