package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/emersion/go-message/mail"
	"github.com/fatih/color"

	"github.com/kazz187/wetracker/internal/client"
	wtmail "github.com/kazz187/wetracker/internal/mail"
	"github.com/kazz187/wetracker/internal/notification"
	"github.com/kazz187/wetracker/internal/task"
)

var (
	app       = kingpin.New("wetracker", "Team task tracker notification tool")
	serverURL = app.Flag("server", "wetracker server base URL").Envar("WETRACKER_SERVER").Default("http://localhost:3100").String()
	apiKey    = app.Flag("api-key", "API key for the server").Envar("WETRACKER_API_KEY").String()
	timeout   = app.Flag("timeout", "Request timeout").Default("10s").Duration()

	notifyCmd      = app.Command("notify", "Raise a notification event on the server")
	notifyType     = notifyCmd.Arg("type", "Event type").Required().Enum(eventKinds()...)
	notifyTaskID   = notifyCmd.Arg("task-id", "Task ID").Required().String()
	notifyActor    = notifyCmd.Flag("actor", "Profile ID of the acting user").Required().String()
	notifyComment  = notifyCmd.Flag("comment", "Comment text (comment_added)").String()
	notifyStatus   = notifyCmd.Flag("status", "New status (status_changed)").String()
	notifyPriority = notifyCmd.Flag("priority", "Priority (task_created)").String()

	tasksCmd      = app.Command("tasks", "List tasks on the server")
	tasksSearch   = tasksCmd.Flag("search", "Search title and notes").String()
	tasksStatus   = tasksCmd.Flag("status", "Filter by status").Default("all").String()
	tasksPriority = tasksCmd.Flag("priority", "Filter by priority").Default("all").String()

	previewCmd         = app.Command("preview", "Render a notification email locally")
	previewType        = previewCmd.Arg("type", "Event type").Required().Enum(eventKinds()...)
	previewTitle       = previewCmd.Flag("title", "Task title").Default("Review Q4 budget proposal and provide feedback").String()
	previewActor       = previewCmd.Flag("actor", "Actor display name").Default("Sarah Johnson").String()
	previewComment     = previewCmd.Flag("comment", "Comment text").String()
	previewStatus      = previewCmd.Flag("status", "Task status").Default(string(task.StatusInProgress)).String()
	previewPriority    = previewCmd.Flag("priority", "Task priority").Default(string(task.PriorityNormal)).String()
	previewAppURL      = previewCmd.Flag("app-url", "Public base URL").Envar("WETRACKER_APP_URL").Default("http://localhost:3000").String()
	previewAppName     = previewCmd.Flag("app-name", "Application name").Envar("WETRACKER_APP_NAME").Default("WE Tracker").String()
	previewTemplateDir = previewCmd.Flag("template-dir", "Template override directory").Envar("WETRACKER_MAIL_TEMPLATE_DIR").String()
	previewFormat      = previewCmd.Flag("format", "Output format").Default("text").Enum("text", "html", "mime")
)

func eventKinds() []string {
	return []string{
		string(notification.KindTaskCreated),
		string(notification.KindTaskAssigned),
		string(notification.KindCommentAdded),
		string(notification.KindStatusChanged),
	}
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var err error
	switch command {
	case notifyCmd.FullCommand():
		err = handleNotify(ctx)
	case tasksCmd.FullCommand():
		err = handleTasks(ctx, os.Stdout)
	case previewCmd.FullCommand():
		err = handlePreview(os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}

func handleNotify(ctx context.Context) error {
	ev := &notification.Event{
		Kind:    notification.EventKind(*notifyType),
		TaskID:  *notifyTaskID,
		ActorID: *notifyActor,
		Data: notification.Data{
			Priority:  task.Priority(*notifyPriority),
			Comment:   *notifyComment,
			NewStatus: task.Status(*notifyStatus),
		},
	}
	if err := client.New(*serverURL, *apiKey, nil).Notify(ctx, ev); err != nil {
		return err
	}
	fmt.Printf("%s %s for task %s accepted\n", color.GreenString("ok"), ev.Kind, ev.TaskID)
	return nil
}

var statusColors = map[task.Status]*color.Color{
	task.StatusNotStarted: color.New(color.FgHiBlack),
	task.StatusInProgress: color.New(color.FgBlue),
	task.StatusCompleted:  color.New(color.FgGreen),
}

var priorityColors = map[task.Priority]*color.Color{
	task.PriorityUrgent:   color.New(color.FgRed, color.Bold),
	task.PriorityNormal:   color.New(color.Reset),
	task.PriorityRainyDay: color.New(color.FgCyan),
}

func handleTasks(ctx context.Context, w io.Writer) error {
	resp, err := client.New(*serverURL, *apiKey, nil).ListTasks(ctx, task.Filter{
		Search:   *tasksSearch,
		Status:   task.Status(*tasksStatus),
		Priority: task.Priority(*tasksPriority),
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tSTATUS\tDUE\tTITLE")
	for _, t := range resp.Tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			colorize(priorityColors[t.Priority], t.Priority.Label()),
			colorize(statusColors[t.Status], t.Status.Label()),
			due,
			t.Title,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d task(s)\n", resp.Total)
	return nil
}

func colorize(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func handlePreview(w io.Writer) error {
	r, err := wtmail.NewRenderer(*previewAppName, *previewTemplateDir)
	if err != nil {
		return err
	}
	content, err := r.Render(&notification.RenderInput{
		Kind:        notification.EventKind(*previewType),
		TaskTitle:   *previewTitle,
		ActorName:   *previewActor,
		Priority:    task.Priority(*previewPriority),
		Comment:     *previewComment,
		Status:      task.Status(*previewStatus),
		TaskURL:     notification.TaskURL(*previewAppURL, "preview"),
		SettingsURL: notification.SettingsURL(*previewAppURL),
	})
	if err != nil {
		return err
	}

	switch *previewFormat {
	case "html":
		_, err = io.WriteString(w, content.HTML)
	case "mime":
		var msg []byte
		msg, err = wtmail.Compose(
			&mail.Address{Name: *previewAppName, Address: "noreply@example.com"},
			&mail.Address{Name: "Preview Recipient", Address: "recipient@example.com"},
			content,
			time.Now(),
		)
		if err == nil {
			_, err = w.Write(msg)
		}
	default:
		_, err = fmt.Fprintf(w, "Subject: %s\n\n%s", content.Subject, content.Text)
	}
	return err
}
