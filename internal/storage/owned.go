package storage

import (
	"context"

	"gorm.io/gorm"
)

// owned runs every query on T scoped to the rows whose owner_name matches the
// caller. It is the only path through which tasks and files are read or
// written.
type owned[T any] struct {
	db *gorm.DB
}

func (o owned[T]) scope(ctx context.Context, owner string) *gorm.DB {
	return o.db.WithContext(ctx).Model(new(T)).Where("owner_name = ?", owner)
}

func (o owned[T]) list(ctx context.Context, owner string, columns ...string) ([]T, error) {
	query := o.scope(ctx, owner).Order("id")
	if len(columns) > 0 {
		query = query.Select(columns)
	}
	out := []T{}
	if err := query.Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (o owned[T]) create(ctx context.Context, rec *T) error {
	return translate(o.db.WithContext(ctx).Create(rec).Error)
}

func (o owned[T]) first(ctx context.Context, owner, cond string, args ...any) (T, error) {
	var rec T
	err := o.scope(ctx, owner).Where(cond, args...).First(&rec).Error
	return rec, translate(err)
}

func (o owned[T]) delete(ctx context.Context, owner, cond string, args ...any) error {
	res := o.scope(ctx, owner).Where(cond, args...).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
