package tasks

import "github.com/opst/taskboard/pkg/utils/rfctime"

// assignee summary embedded in Task.
type User struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Task struct {
	Id            int             `json:"id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description"`
	DueDate       rfctime.RFC3339 `json:"dueDate"`
	Status        string          `json:"status"`
	EstimatedTime *string         `json:"estimatedTime"`
	UserId        *string         `json:"userId"`
	CreatedBy     *string         `json:"createdBy"`
	User          *User           `json:"user"`
	CreatedAt     rfctime.RFC3339 `json:"createdAt"`
	UpdatedAt     rfctime.RFC3339 `json:"updatedAt"`
}

func (t Task) Equal(o Task) bool {
	userEq := (t.User == nil && o.User == nil) ||
		(t.User != nil && o.User != nil && *t.User == *o.User)

	return t.Id == o.Id &&
		t.Title == o.Title &&
		eqPtr(t.Description, o.Description) &&
		t.DueDate.Equal(&o.DueDate) &&
		t.Status == o.Status &&
		eqPtr(t.EstimatedTime, o.EstimatedTime) &&
		eqPtr(t.UserId, o.UserId) &&
		eqPtr(t.CreatedBy, o.CreatedBy) &&
		userEq &&
		t.CreatedAt.Equal(&o.CreatedAt) &&
		t.UpdatedAt.Equal(&o.UpdatedAt)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// request body of POST /api/tasks
//
// DueDate is a RFC3339 date-time or a full-date (YYYY-MM-DD).
type Create struct {
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	DueDate       string  `json:"dueDate"`
	Status        string  `json:"status,omitempty"`
	EstimatedTime *string `json:"estimatedTime,omitempty"`
	UserId        string  `json:"userId,omitempty"`
}

// request body of PUT /api/tasks/:taskId
//
// Absent fields are not changed.
type Update struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	DueDate       *string `json:"dueDate,omitempty"`
	Status        *string `json:"status,omitempty"`
	EstimatedTime *string `json:"estimatedTime,omitempty"`
	UserId        *string `json:"userId,omitempty"`
}
