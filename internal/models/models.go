package models

// User is a registered account. Tasks and files reference it by Name.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
}

func (User) TableName() string { return "users" }

type Task struct {
	ID        int64
	Text      string
	OwnerName string
}

func (Task) TableName() string { return "tasks" }

// File is an uploaded blob. Size is the byte length of Content at upload time
// and is stored separately so listings never load Content.
type File struct {
	ID        int64
	FileName  string
	Size      int64
	Content   []byte
	OwnerName string
}

func (File) TableName() string { return "files" }
