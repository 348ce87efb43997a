package console

import (
	"time"

	"github.com/goliatone/go-toolform/pkg/client"
	"github.com/goliatone/go-toolform/pkg/model"
	"github.com/goliatone/go-toolform/pkg/render"
	"github.com/goliatone/go-toolform/pkg/result"
)

// NoticeLevel classifies a Notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is the last user-facing message produced by an operation.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Selection is the tool currently open in the console.
type Selection struct {
	Details client.ToolDetails
	Form    model.FormModel
	// Values holds the raw inputs of the last submission keyed by input
	// name, so a re-rendered form keeps what the user typed.
	Values map[string]string
}

// Execution records one tool invocation.
type Execution struct {
	ID      string
	ToolID  string
	Params  map[string]any
	Raw     []byte
	Display result.Display
	Err     error
	// Errors places structured backend validation messages on form fields.
	Errors render.ErrorMapping
	At     time.Time
}

// Failed reports whether the invocation errored.
func (e Execution) Failed() bool {
	return e.Err != nil
}

// State is the whole console state. Treat it as a value: operations return
// a new State and leave the old one untouched.
type State struct {
	Tools     []client.Tool
	Filter    string
	Selection *Selection

	LastExecution *Execution

	Config   *client.Config
	LastTest *client.TestResult
	Service  *client.ServiceStatus
	Logs     *client.Logs
	LogQuery client.LogQuery

	Notice *Notice
}

// VisibleTools applies the current filter to the cached tool list.
func (s State) VisibleTools() []client.Tool {
	if s.Filter == "" {
		return s.Tools
	}
	out := make([]client.Tool, 0, len(s.Tools))
	for _, tool := range s.Tools {
		if tool.Matches(s.Filter) {
			out = append(out, tool)
		}
	}
	return out
}

// SelectedID returns the id of the open tool, or "".
func (s State) SelectedID() string {
	if s.Selection == nil {
		return ""
	}
	return s.Selection.Details.ID
}

// Tool finds a tool in the cached list.
func (s State) Tool(id string) (client.Tool, bool) {
	for _, tool := range s.Tools {
		if tool.ID == id {
			return tool, true
		}
	}
	return client.Tool{}, false
}

func (s State) withNotice(level NoticeLevel, text string) State {
	s.Notice = &Notice{Level: level, Text: text}
	return s
}
