package storage

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"todolist-api/internal/models"
)

// DB is a [Store] backed by a SQLite database.
type DB struct {
	db  *gorm.DB
	sql *sql.DB
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.sql.Close()
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, name, passwordHash string) (models.User, error) {
	user := models.User{Name: name, PasswordHash: passwordHash}
	if err := d.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, translate(err)
	}
	return user, nil
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	return user, translate(err)
}

// ListTasks satisfies the [Tasks] interface.
func (d *DB) ListTasks(ctx context.Context, owner string) ([]models.Task, error) {
	return owned[models.Task]{d.db}.list(ctx, owner)
}

// CreateTask satisfies the [Tasks] interface.
func (d *DB) CreateTask(ctx context.Context, owner, text string) (models.Task, error) {
	task := models.Task{Text: text, OwnerName: owner}
	if err := (owned[models.Task]{d.db}).create(ctx, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// UpdateTask satisfies the [Tasks] interface.
func (d *DB) UpdateTask(ctx context.Context, owner string, id int64, text string) (models.Task, error) {
	var task models.Task
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if task, err = (owned[models.Task]{tx}).first(ctx, owner, "id = ?", id); err != nil {
			return err
		}
		task.Text = text
		if err = tx.Model(&task).Update("text", text).Error; err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask satisfies the [Tasks] interface.
func (d *DB) DeleteTask(ctx context.Context, owner string, id int64) error {
	return owned[models.Task]{d.db}.delete(ctx, owner, "id = ?", id)
}

// ListFiles satisfies the [Files] interface.
func (d *DB) ListFiles(ctx context.Context, owner string) ([]models.File, error) {
	return owned[models.File]{d.db}.list(ctx, owner, "id", "file_name", "size", "owner_name")
}

// UploadFile satisfies the [Files] interface.
func (d *DB) UploadFile(ctx context.Context, owner, name string, content []byte) (models.File, error) {
	file := models.File{
		FileName:  name,
		Size:      int64(len(content)),
		Content:   content,
		OwnerName: owner,
	}
	if err := (owned[models.File]{d.db}).create(ctx, &file); err != nil {
		return models.File{}, err
	}
	return file, nil
}

// GetFile satisfies the [Files] interface.
func (d *DB) GetFile(ctx context.Context, owner, name string) (models.File, error) {
	return owned[models.File]{d.db}.first(ctx, owner, "file_name = ?", name)
}

// DeleteFile satisfies the [Files] interface.
func (d *DB) DeleteFile(ctx context.Context, owner, name string) error {
	return owned[models.File]{d.db}.delete(ctx, owner, "file_name = ?", name)
}

var _ Store = (*DB)(nil)
