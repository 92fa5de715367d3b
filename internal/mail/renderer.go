package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/kazz187/wetracker/internal/notification"
	"github.com/kazz187/wetracker/internal/task"
)

const (
	htmlPattern = "*.html.tmpl"
	textPattern = "*.txt.tmpl"

	defaultActorName = "Someone"
	maxCommentRunes  = 280

	reloadDebounce = 100 * time.Millisecond
)

//go:embed templates
var embedded embed.FS

type statusStyle struct {
	color      htmltemplate.CSS
	background htmltemplate.CSS
}

var statusStyles = map[task.Status]statusStyle{
	task.StatusNotStarted: {color: "#6b7280", background: "#f3f4f6"},
	task.StatusInProgress: {color: "#1669C9", background: "#dbeafe"},
	task.StatusCompleted:  {color: "#16a34a", background: "#dcfce7"},
}

var headlines = map[notification.EventKind]string{
	notification.KindTaskCreated:   "New Task Created",
	notification.KindTaskAssigned:  "New Task Assigned",
	notification.KindCommentAdded:  "New Comment",
	notification.KindStatusChanged: "Task Status Updated",
}

// view is what every template is executed with.
type view struct {
	AppName          string
	Headline         string
	Actor            string
	Title            string
	Comment          string
	PriorityLabel    string
	StatusLabel      string
	StatusColor      htmltemplate.CSS
	StatusBackground htmltemplate.CSS
	TaskURL          string
	SettingsURL      string
}

// Renderer turns a notification into an email. Templates are embedded in the
// binary; files in overrideDir with the same names replace them.
type Renderer struct {
	appName     string
	overrideDir string

	mu   sync.RWMutex
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer(appName, overrideDir string) (*Renderer, error) {
	r := &Renderer{
		appName:     appName,
		overrideDir: overrideDir,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload parses the embedded templates plus any overrides. On error the
// previously loaded templates stay in use.
func (r *Renderer) Reload() error {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return fmt.Errorf("failed to open embedded templates: %w", err)
	}
	sources := []fs.FS{sub}
	if r.overrideDir != "" {
		sources = append(sources, os.DirFS(r.overrideDir))
	}

	html := htmltemplate.New("mail")
	text := texttemplate.New("mail")
	for _, src := range sources {
		if ok, err := hasMatch(src, htmlPattern); err != nil {
			return err
		} else if ok {
			if html, err = html.ParseFS(src, htmlPattern); err != nil {
				return fmt.Errorf("failed to parse html templates: %w", err)
			}
		}
		if ok, err := hasMatch(src, textPattern); err != nil {
			return err
		} else if ok {
			if text, err = text.ParseFS(src, textPattern); err != nil {
				return fmt.Errorf("failed to parse text templates: %w", err)
			}
		}
	}

	for kind := range headlines {
		if html.Lookup(string(kind)+".html") == nil {
			return fmt.Errorf("missing html template for %s", kind)
		}
		if text.Lookup(string(kind)+".txt") == nil {
			return fmt.Errorf("missing text template for %s", kind)
		}
	}

	r.mu.Lock()
	r.html = html
	r.text = text
	r.mu.Unlock()
	return nil
}

func hasMatch(fsys fs.FS, pattern string) (bool, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return false, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}
	return len(matches) > 0, nil
}

func (r *Renderer) Render(in *notification.RenderInput) (*notification.Content, error) {
	headline, ok := headlines[in.Kind]
	if !ok {
		return nil, fmt.Errorf("no email for notification type %q", in.Kind)
	}

	status := in.Status
	if !status.Valid() {
		status = task.StatusNotStarted
	}
	style := statusStyles[status]
	v := &view{
		AppName:          r.appName,
		Headline:         headline,
		Actor:            orDefault(in.ActorName, defaultActorName),
		Title:            in.TaskTitle,
		Comment:          excerpt(in.Comment, maxCommentRunes),
		PriorityLabel:    in.Priority.Label(),
		StatusLabel:      status.Label(),
		StatusColor:      style.color,
		StatusBackground: style.background,
		TaskURL:          in.TaskURL,
		SettingsURL:      in.SettingsURL,
	}

	r.mu.RLock()
	html, text := r.html, r.text
	r.mu.RUnlock()

	var htmlBuf, textBuf bytes.Buffer
	if err := html.ExecuteTemplate(&htmlBuf, string(in.Kind)+".html", v); err != nil {
		return nil, fmt.Errorf("failed to render html for %s: %w", in.Kind, err)
	}
	if err := text.ExecuteTemplate(&textBuf, string(in.Kind)+".txt", v); err != nil {
		return nil, fmt.Errorf("failed to render text for %s: %w", in.Kind, err)
	}
	return &notification.Content{
		Subject: r.subject(in.Kind, v),
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}

func (r *Renderer) subject(kind notification.EventKind, v *view) string {
	var s string
	switch kind {
	case notification.KindTaskCreated:
		s = fmt.Sprintf("%s created a new task: %s", v.Actor, v.Title)
	case notification.KindTaskAssigned:
		s = fmt.Sprintf("%s assigned you: %s", v.Actor, v.Title)
	case notification.KindCommentAdded:
		s = fmt.Sprintf("%s commented on: %s", v.Actor, v.Title)
	case notification.KindStatusChanged:
		s = fmt.Sprintf("%s marked as %s", v.Title, v.StatusLabel)
	}
	return fmt.Sprintf("[%s] %s", r.appName, s)
}

// Watch reloads the templates whenever a file in the override directory
// changes. It blocks until ctx is done. Without an override directory it
// returns immediately.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.overrideDir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.overrideDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.overrideDir, err)
	}
	slog.Info("watching mail templates", "dir", r.overrideDir)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(filepath.Base(event.Name), ".tmpl") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := r.Reload(); err != nil {
					slog.Error("failed to reload mail templates", "error", err)
					return
				}
				slog.Info("mail templates reloaded", "dir", r.overrideDir)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("mail template watcher error", "error", err)
		}
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// excerpt shortens s to at most n runes, marking the cut with an ellipsis.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
