package repository

import "context"

// Empty is a store that holds nothing: lists are empty, lookups miss and
// writes are refused. It backs view sets that only need to exist, such as
// when generating the API schema offline.
type Empty[T any] struct{}

func (Empty[T]) List(ctx context.Context) ([]*T, error)        { return []*T{}, nil }
func (Empty[T]) Get(ctx context.Context, id string) (*T, error) { return nil, ErrNotFound }
func (Empty[T]) Create(ctx context.Context, obj *T) error       { return ErrReadOnly }
func (Empty[T]) Update(ctx context.Context, obj *T) error       { return ErrReadOnly }
func (Empty[T]) Delete(ctx context.Context, id string) error    { return ErrReadOnly }
