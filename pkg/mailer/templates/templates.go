package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each has <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
const (
	InterviewScheduled = "interview_scheduled"
	StatusChanged      = "status_changed"
)

// Known reports whether name has a template set.
func Known(name string) bool {
	switch name {
	case InterviewScheduled, StatusChanged:
		return true
	default:
		return false
	}
}

// NotificationData is the payload every notification template renders from.
type NotificationData struct {
	AppName         string `json:"appName"`
	InterviewerName string `json:"interviewerName"`

	CandidateID    string    `json:"candidateId"`
	CandidateName  string    `json:"candidateName"`
	Position       string    `json:"position"`
	InterviewField string    `json:"interviewField"`
	InterviewRound string    `json:"interviewRound"`
	InterviewDate  time.Time `json:"interviewDate"`

	Status         string   `json:"status"`
	PreviousStatus string   `json:"previousStatus,omitempty"`
	Score          *float64 `json:"score,omitempty"`
	Feedback       string   `json:"feedback,omitempty"`
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return fallback
			}
			return rv.Elem().Interface()
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"formatTime": func(t time.Time, layout string) string { return t.UTC().Format(layout) },
		"title":      titleWord,
		"default":    defaultFn,
	}
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Both sets are parsed once; a broken template fails at init rather than per job.
var (
	textSet = texttpl.Must(texttpl.New("text").Funcs(texttpl.FuncMap(baseFuncs())).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("html").Funcs(htmpl.FuncMap(baseFuncs())).ParseFS(FS, "*.html.tmpl"))
)

func execText(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := textSet.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func execHTML(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := htmlSet.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces the subject, plain-text and HTML bodies for the named template set.
func Render(name string, data any) (subject, text, html string, err error) {
	if !Known(name) {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = execText(name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execText(name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execHTML(name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
