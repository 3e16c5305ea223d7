package ai

// task draft extracted from audio or image.
type TaskDraft struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`

	// full-date (YYYY-MM-DD)
	DueDate string `json:"dueDate"`
}

type Reminders struct {
	Reminders []string `json:"reminders"`
}
