// Package tables remembers the last table number each device ordered from,
// so dine-in customers are not asked again.
package tables

import "context"

// Repository is keyed by the browser's device id.
type Repository interface {
	// Get returns "" when the device has no default.
	Get(ctx context.Context, deviceID string) (string, error)
	Save(ctx context.Context, deviceID, table string) error
}
