package notification

import (
	"fmt"
	"strings"

	"github.com/kazz187/wetracker/internal/task"
)

// RenderInput is everything an email template may show. Empty fields are
// allowed; renderers substitute placeholders.
type RenderInput struct {
	Kind        EventKind
	TaskTitle   string
	ActorName   string
	Priority    task.Priority
	Comment     string
	Status      task.Status
	TaskURL     string
	SettingsURL string
}

type Renderer interface {
	Render(in *RenderInput) (*Content, error)
}

// TaskURL is the deep link to a task: {base_url}/tasks/{taskId}.
func TaskURL(baseURL, taskID string) string {
	return fmt.Sprintf("%s/tasks/%s", strings.TrimRight(baseURL, "/"), taskID)
}

// SettingsURL is where a recipient manages their notification preferences.
func SettingsURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/settings"
}
