package settings

type Settings struct {
	ApiUrl            string `json:"apiUrl"`
	ApiKey            string `json:"apiKey"`
	InstanceName      string `json:"instanceName"`
	NotificationPhone string `json:"notificationPhone"`
}

// result of an overdue notification run.
type NotifyResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// result of sending the test message.
type TestResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
