package store

import "context"

// Staged buffers writes on top of a base Store so that an invocation's
// mutations land all at once, or not at all. Reads see staged writes first,
// then fall through to the base. Nothing reaches the base until Commit.
type Staged struct {
	base    Store
	overlay map[Field]string
}

func NewStaged(base Store) *Staged {
	return &Staged{
		base:    base,
		overlay: make(map[Field]string),
	}
}

func (s *Staged) Has(ctx context.Context, f Field) (bool, error) {
	if _, ok := s.overlay[f]; ok {
		return true, nil
	}
	return s.base.Has(ctx, f)
}

func (s *Staged) Get(ctx context.Context, f Field) (string, error) {
	if v, ok := s.overlay[f]; ok {
		return v, nil
	}
	return s.base.Get(ctx, f)
}

func (s *Staged) Set(ctx context.Context, f Field, v string) error {
	s.overlay[f] = v
	return nil
}

func (s *Staged) Apply(ctx context.Context, batch map[Field]string) error {
	for f, v := range batch {
		s.overlay[f] = v
	}
	return nil
}

// Commit flushes every staged write to the base store as one atomic batch.
func (s *Staged) Commit(ctx context.Context) error {
	if len(s.overlay) == 0 {
		return nil
	}
	if err := s.base.Apply(ctx, s.overlay); err != nil {
		return err
	}
	s.overlay = make(map[Field]string)
	return nil
}

// Discard drops every staged write.
func (s *Staged) Discard() {
	s.overlay = make(map[Field]string)
}
