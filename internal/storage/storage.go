// Package storage provides the state management for users and the records
// they own.
package storage

import (
	"context"

	"todolist-api/internal/models"
)

const (
	// ErrNotFound is returned when a record does not exist or is not owned by
	// the caller. The two cases are deliberately indistinguishable.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique user name or owned file name is
	// already in use.
	ErrAlreadyExists Error = "already exists"
	// ErrUnknownOwner is returned when a record is written for an owner that
	// is not a registered user.
	ErrUnknownOwner Error = "unknown owner"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// the credential store.
type Users interface {
	// CreateUser stores a new user. An [ErrAlreadyExists] error is returned if
	// the name is already in use.
	CreateUser(ctx context.Context, name, passwordHash string) (models.User, error)
	// GetUserByName returns the user with the given name, or [ErrNotFound].
	GetUserByName(ctx context.Context, name string) (models.User, error)
}

// Tasks are the owner-scoped task methods. Every method only ever sees rows
// whose owner matches the owner argument.
type Tasks interface {
	// ListTasks returns the owner's tasks in insertion order.
	ListTasks(ctx context.Context, owner string) ([]models.Task, error)
	CreateTask(ctx context.Context, owner, text string) (models.Task, error)
	// UpdateTask replaces the text of an owned task, or returns [ErrNotFound].
	UpdateTask(ctx context.Context, owner string, id int64, text string) (models.Task, error)
	// DeleteTask removes an owned task, or returns [ErrNotFound].
	DeleteTask(ctx context.Context, owner string, id int64) error
}

// Files are the owner-scoped file methods.
type Files interface {
	// ListFiles returns the owner's file metadata in insertion order. Content
	// is not loaded.
	ListFiles(ctx context.Context, owner string) ([]models.File, error)
	// UploadFile stores content under name. An [ErrAlreadyExists] error is
	// returned if the owner already has a file with that name.
	UploadFile(ctx context.Context, owner, name string, content []byte) (models.File, error)
	// GetFile returns an owned file with its content, or [ErrNotFound].
	GetFile(ctx context.Context, owner, name string) (models.File, error)
	// DeleteFile removes an owned file, or returns [ErrNotFound].
	DeleteFile(ctx context.Context, owner, name string) error
}

// Store is the combination interface for [Users], [Tasks] and [Files].
type Store interface {
	Users
	Tasks
	Files
	// Close releases the underlying database handle.
	Close() error
}
