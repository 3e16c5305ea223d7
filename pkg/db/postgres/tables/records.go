package tables

import "time"

// golang representation of record of PostgresSQL tables
//
// some tables are omitted, because of its simpleness.

type Team struct {
	TeamId string
	Name   string
}

type User struct {
	UserId   string
	Name     string
	Email    string
	Password *string
	Role     string
	TeamId   *string
}

type Task struct {
	TaskId        int
	Title         string
	Description   *string
	DueDate       time.Time
	Status        string
	EstimatedTime *string
	UserId        *string
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Reminder struct {
	ReminderId  string
	Content     string
	IsCompleted bool
	UserId      string
	CreatedAt   time.Time
}

type Integration struct {
	IntegrationId string
	Provider      string
	AccessToken   string
	RefreshToken  *string
	ExpiresAt     *time.Time
	AccountEmail  string
	UserId        string
	CreatedAt     time.Time
}

type Settings struct {
	ApiUrl            string
	ApiKey            string
	InstanceName      string
	NotificationPhone string
}
