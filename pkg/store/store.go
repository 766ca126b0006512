// Package store provides the persisted field mapping that backs a funding
// relationship record.
//
// The store is a dumb, durable substrate: values are opaque strings and no
// validation happens here. Typed interpretation of the fields lives in
// pkg/revenue. Implementations must make Apply atomic: either every field in
// the batch is persisted, or none are.
package store

import (
	"context"
	"errors"
)

// Field names one logical slot of the authorization record.
type Field string

const (
	FieldSender     Field = "sender"
	FieldReceiver   Field = "receiver"
	FieldAsset      Field = "funding_asset"
	FieldStartEpoch Field = "start_epoch"
	FieldAmount     Field = "amount"
	FieldStep       Field = "step"
	FieldLatest     Field = "latest"
)

// Fields lists every field of the record.
var Fields = []Field{
	FieldSender,
	FieldReceiver,
	FieldAsset,
	FieldStartEpoch,
	FieldAmount,
	FieldStep,
	FieldLatest,
}

// ErrFieldAbsent is returned by Get for a field that has never been written.
var ErrFieldAbsent = errors.New("field absent")

// Store is the persisted mapping the engine reads and writes.
type Store interface {
	// Has reports whether the field has been written.
	Has(ctx context.Context, f Field) (bool, error)

	// Get returns the stored value, or ErrFieldAbsent.
	Get(ctx context.Context, f Field) (string, error)

	// Set persists a single field.
	Set(ctx context.Context, f Field, v string) error

	// Apply persists every entry of the batch as one atomic unit.
	Apply(ctx context.Context, batch map[Field]string) error
}
