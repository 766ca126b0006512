package revenue

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/Fairwater-Labs/drip/pkg/store"
)

// Record is the typed view of the persisted authorization record.
type Record struct {
	Sender     string
	Receiver   string
	Asset      string
	StartEpoch int64
	Amount     *big.Int
	Step       int64
	Latest     int64
}

// recordView reads and writes typed fields over the dumb string store.
type recordView struct {
	s store.Store
}

func (r recordView) getString(ctx context.Context, f store.Field) (string, error) {
	v, err := r.s.Get(ctx, f)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f, err)
	}
	return v, nil
}

func (r recordView) getInt64(ctx context.Context, f store.Field) (int64, error) {
	v, err := r.getString(ctx, f)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s value %q: %w", f, v, err)
	}
	return n, nil
}

func (r recordView) getAmount(ctx context.Context) (*big.Int, error) {
	v, err := r.getString(ctx, store.FieldAmount)
	if err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, fmt.Errorf("corrupt %s value %q", store.FieldAmount, v)
	}
	return amount, nil
}

func (r recordView) putInt64(ctx context.Context, f store.Field, n int64) error {
	return r.s.Set(ctx, f, strconv.FormatInt(n, 10))
}

func (r recordView) putAmount(ctx context.Context, amount *big.Int) error {
	return r.s.Set(ctx, store.FieldAmount, amount.String())
}

func (r recordView) load(ctx context.Context) (*Record, error) {
	rec := &Record{}
	var err error
	if rec.Sender, err = r.getString(ctx, store.FieldSender); err != nil {
		return nil, err
	}
	if rec.Receiver, err = r.getString(ctx, store.FieldReceiver); err != nil {
		return nil, err
	}
	if rec.Asset, err = r.getString(ctx, store.FieldAsset); err != nil {
		return nil, err
	}
	if rec.StartEpoch, err = r.getInt64(ctx, store.FieldStartEpoch); err != nil {
		return nil, err
	}
	if rec.Amount, err = r.getAmount(ctx); err != nil {
		return nil, err
	}
	if rec.Step, err = r.getInt64(ctx, store.FieldStep); err != nil {
		return nil, err
	}
	if rec.Latest, err = r.getInt64(ctx, store.FieldLatest); err != nil {
		return nil, err
	}
	return rec, nil
}
