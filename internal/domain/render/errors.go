package render

import (
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrEmptyDocument is returned when decoding leaves nothing to show.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrViewNotFound is returned for unknown view ids.
	ErrViewNotFound = errors.New("view not found")
)

// Stage names a pipeline step.
type Stage string

const (
	StageLoad     Stage = "load"
	StageDecode   Stage = "decode"
	StageSanitize Stage = "sanitize"
	StageIsolate  Stage = "isolate"
	StagePatch    Stage = "patch"
	StageOverlay  Stage = "overlay"
	StageShell    Stage = "shell"
)

// RenderError is an unexpected failure that stopped a render.
type RenderError struct {
	Stage Stage
	File  string
	Err   error
}

func (e *RenderError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.File, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func fail(stage Stage, file string, err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Stage: stage, File: file, Err: err}
}

const (
	NoticeTitle    = "HTML reader Error"
	NoticeDuration = 8 * time.Second
)

var noticePolicy = bluemonday.StrictPolicy()

// Notice is the transient on-screen message shown for a failed render.
type Notice struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Stage    Stage  `json:"stage,omitempty"`
	File     string `json:"file,omitempty"`
	Duration int64  `json:"durationMs"`
}

// NoticeFor builds the notice reporting err.
func NoticeFor(err error) Notice {
	n := Notice{
		Title:    NoticeTitle,
		Message:  err.Error(),
		Duration: NoticeDuration.Milliseconds(),
	}
	var re *RenderError
	if errors.As(err, &re) {
		n.Stage = re.Stage
		n.File = re.File
	}
	return n
}

// HTML renders the notice body. Markup in the message is stripped.
func (n Notice) HTML() string {
	return "<b>" + html.EscapeString(n.Title) + "</b>:<br/>" + noticePolicy.Sanitize(n.Message)
}
