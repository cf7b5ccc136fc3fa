package form

import "context"

// MessageKind selects the styling of the message box.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Fields reads and resets the live values of the form.
type Fields interface {
	File() *File
	Weights() string
	Impacts() string
	Email() string
	Reset()
}

// Button is the submit control.
type Button interface {
	SetDisabled(disabled bool)
	Label() string
	SetLabel(label string)
}

type MessageBox interface {
	Show(text string, kind MessageKind)
	Hide()
	ScrollIntoView()
}

type ResultsPanel interface {
	SetHTML(html string)
	Show()
	ScrollIntoView()
}

// FileLabel is the clickable label standing in for the native file input.
type FileLabel interface {
	SetText(text string)
	SetColor(color string)
}

// Elements are the UI handles the controller drives. The host owns them and
// touches them only from its UI thread.
type Elements struct {
	Form      Fields
	Submit    Button
	Messages  MessageBox
	Results   ResultsPanel
	FileLabel FileLabel
}

// Host exposes the events a UI toolkit raises for the form.
type Host interface {
	OnFileChanged(func(f *File))
	OnSubmit(func(ctx context.Context))
}

// Uploader sends a validated form to the server.
type Uploader interface {
	Upload(ctx context.Context, in Input) (*Response, error)
}

const (
	LoadingLabel   = `<div class="spinner"></div><span class="btn-text">Processing...</span>`
	EmptyFileLabel = "📁 Choose CSV File"
	SelectedPrefix = "✓ "
	ColorDefault   = "#667eea"
	ColorSelected  = "#27ae60"
)
