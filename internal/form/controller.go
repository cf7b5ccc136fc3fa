package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBusy is returned by Submit while an earlier submission is still in flight.
var ErrBusy = errors.New("submission already in progress")

// ErrEmptyResponse is reported when an uploader returns neither a response nor
// an error.
var ErrEmptyResponse = errors.New("empty response")

// ServerError carries the message of a response with success=false.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// Timer is the handle returned by the scheduler used for auto-dismiss.
type Timer interface {
	Stop() bool
}

type Option func(*Controller)

// WithDismissAfter sets how long a success message stays visible.
func WithDismissAfter(d time.Duration) Option {
	return func(c *Controller) { c.dismissAfter = d }
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(f func(time.Duration, func()) Timer) Option {
	return func(c *Controller) { c.afterFunc = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller validates the upload form, submits it and renders the outcome.
type Controller struct {
	el       Elements
	uploader Uploader
	logger   *slog.Logger

	dismissAfter time.Duration
	afterFunc    func(time.Duration, func()) Timer

	inFlight atomic.Bool

	dismissMu sync.Mutex
	dismiss   Timer
}

func NewController(el Elements, u Uploader, opts ...Option) *Controller {
	c := &Controller{
		el:           el,
		uploader:     u,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		dismissAfter: 5 * time.Second,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind registers the controller's handlers with the host.
func (c *Controller) Bind(h Host) {
	h.OnFileChanged(c.FileChanged)
	h.OnSubmit(func(ctx context.Context) {
		_ = c.Submit(ctx)
	})
}

// FileChanged updates the file label after the selection changed. A nil file
// means the selection was cleared.
func (c *Controller) FileChanged(f *File) {
	if f == nil {
		c.resetFileLabel()
		return
	}
	c.el.FileLabel.SetText(SelectedPrefix + f.Name)
	c.el.FileLabel.SetColor(ColorSelected)
}

func (c *Controller) resetFileLabel() {
	c.el.FileLabel.SetText(EmptyFileLabel)
	c.el.FileLabel.SetColor(ColorDefault)
}

func (c *Controller) input() Input {
	return Input{
		File:    c.el.Form.File(),
		Weights: c.el.Form.Weights(),
		Impacts: c.el.Form.Impacts(),
		Email:   c.el.Form.Email(),
	}
}

// Submit runs one submission attempt. The returned error describes why the
// attempt did not succeed; it has already been shown to the user.
func (c *Controller) Submit(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.inFlight.Store(false)

	in := c.input()
	if err := Validate(in); err != nil {
		c.showMessage(err.Error(), MessageError)
		return err
	}

	c.el.Submit.SetDisabled(true)
	original := c.el.Submit.Label()
	c.el.Submit.SetLabel(LoadingLabel)
	defer func() {
		c.el.Submit.SetDisabled(false)
		c.el.Submit.SetLabel(original)
	}()

	resp, err := c.uploader.Upload(ctx, in)
	if err == nil && resp == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		c.logger.Warn("upload failed", "error", err)
		c.showMessage("Error: "+err.Error(), MessageError)
		return err
	}

	if !resp.Success {
		c.showMessage(resp.Message, MessageError)
		return &ServerError{Message: resp.Message}
	}

	c.logger.Info("upload complete", "result_file", resp.ResultFile, "total_rows", resp.TotalRows)
	c.showMessage(resp.Message, MessageSuccess)
	c.displayResults(resp)
	c.el.Form.Reset()
	c.resetFileLabel()
	return nil
}

// showMessage is the single path for user-facing messages. Success messages
// hide themselves after the dismiss delay; any newer message cancels a pending
// dismiss.
func (c *Controller) showMessage(text string, kind MessageKind) {
	c.dismissMu.Lock()
	if c.dismiss != nil {
		c.dismiss.Stop()
		c.dismiss = nil
	}
	c.el.Messages.Show(text, kind)
	if kind == MessageSuccess && c.dismissAfter > 0 {
		var t Timer
		t = c.afterFunc(c.dismissAfter, func() {
			c.dismissMu.Lock()
			defer c.dismissMu.Unlock()
			if c.dismiss != t {
				return
			}
			c.dismiss = nil
			c.el.Messages.Hide()
		})
		c.dismiss = t
	}
	c.dismissMu.Unlock()

	c.el.Messages.ScrollIntoView()
}

func (c *Controller) displayResults(resp *Response) {
	c.el.Results.SetHTML(RenderResults(resp))
	c.el.Results.Show()
	c.el.Results.ScrollIntoView()
}
