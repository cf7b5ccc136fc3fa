package form

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

// fakeUI implements every element interface and records what the controller
// did to it.
type fakeUI struct {
	file     *File
	fileFunc func() *File
	weights  string
	impacts  string
	email    string
	resets   int

	disabled     bool
	label        string
	disableTrail []bool

	msgText    string
	msgKind    MessageKind
	msgVisible bool
	scrolls    int

	fileLabel      string
	fileLabelColor string
}

func (f *fakeUI) File() *File {
	if f.fileFunc != nil {
		return f.fileFunc()
	}
	return f.file
}
func (f *fakeUI) Weights() string { return f.weights }
func (f *fakeUI) Impacts() string { return f.impacts }
func (f *fakeUI) Email() string   { return f.email }
func (f *fakeUI) Reset() {
	f.resets++
	f.file, f.weights, f.impacts, f.email = nil, "", "", ""
}

func (f *fakeUI) SetDisabled(d bool) {
	f.disabled = d
	f.disableTrail = append(f.disableTrail, d)
}
func (f *fakeUI) Label() string     { return f.label }
func (f *fakeUI) SetLabel(l string) { f.label = l }

func (f *fakeUI) Show(text string, kind MessageKind) {
	f.msgText, f.msgKind, f.msgVisible = text, kind, true
}
func (f *fakeUI) Hide()           { f.msgVisible = false }
func (f *fakeUI) ScrollIntoView() { f.scrolls++ }

func (f *fakeUI) SetText(t string)  { f.fileLabel = t }
func (f *fakeUI) SetColor(c string) { f.fileLabelColor = c }

type fakeResults struct {
	html    string
	visible bool
}

func (r *fakeResults) SetHTML(h string) { r.html = h }
func (r *fakeResults) Show()            { r.visible = true }
func (r *fakeResults) ScrollIntoView()  {}

type mockUploader struct {
	mock.Mock
	// observe runs inside Upload so tests can inspect UI state mid-request.
	observe func()
}

func (m *mockUploader) Upload(ctx context.Context, in Input) (*Response, error) {
	if m.observe != nil {
		m.observe()
	}
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Response), args.Error(1)
}

// manualTimers collects scheduled callbacks instead of running them.
type manualTimers struct {
	pending []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) afterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{d: d, f: f}
	m.pending = append(m.pending, t)
	return t
}

func (m *manualTimers) fireAll() {
	for _, t := range m.pending {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

type harness struct {
	ui       *fakeUI
	results  *fakeResults
	uploader *mockUploader
	timers   *manualTimers
	ctrl     *Controller
}

func newHarness() *harness {
	ui := &fakeUI{
		file:    &File{Name: "funds.csv", Data: []byte("Fund Name,P1,P2,P3,P4\n")},
		weights: "1,1,1,1",
		impacts: "+,+,-,+",
		email:   "user@example.com",
		label:   "Calculate TOPSIS",
	}
	h := &harness{
		ui:       ui,
		results:  &fakeResults{},
		uploader: &mockUploader{},
		timers:   &manualTimers{},
	}
	h.ctrl = NewController(Elements{
		Form:      ui,
		Submit:    ui,
		Messages:  ui,
		Results:   h.results,
		FileLabel: ui,
	}, h.uploader, WithAfterFunc(h.timers.afterFunc))
	return h
}

func successResponse(t *testing.T) *Response {
	t.Helper()
	var resp upload.Response
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"message":"TOPSIS analysis completed successfully!",
		"total_rows":4,"result_file":"result_x.csv","email_status":"Email sent successfully",
		"data_preview":[{"Fund Name":"M1","Topsis Score":0.534277,"Rank":3}]}`), &resp))
	return &resp
}

func TestSubmitValidationFailureNeverUploads(t *testing.T) {
	h := newHarness()
	h.ui.weights = "1,abc"

	err := h.ctrl.Submit(context.Background())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, MsgWeightsNumeric, h.ui.msgText)
	assert.Equal(t, MessageError, h.ui.msgKind)
	assert.Empty(t, h.ui.disableTrail, "submit control must not be touched")
	h.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestSubmitSuccess(t *testing.T) {
	h := newHarness()
	h.ui.fileLabel = SelectedPrefix + "funds.csv"
	resp := successResponse(t)

	h.uploader.observe = func() {
		assert.True(t, h.ui.disabled, "control disabled during upload")
		assert.Equal(t, LoadingLabel, h.ui.label)
	}
	h.uploader.On("Upload", mock.Anything, mock.MatchedBy(func(in Input) bool {
		return in.File.Name == "funds.csv" && in.Weights == "1,1,1,1" &&
			in.Impacts == "+,+,-,+" && in.Email == "user@example.com"
	})).Return(resp, nil).Once()

	require.NoError(t, h.ctrl.Submit(context.Background()))

	h.uploader.AssertExpectations(t)
	assert.Equal(t, []bool{true, false}, h.ui.disableTrail)
	assert.Equal(t, "Calculate TOPSIS", h.ui.label)

	assert.Equal(t, "TOPSIS analysis completed successfully!", h.ui.msgText)
	assert.Equal(t, MessageSuccess, h.ui.msgKind)
	assert.True(t, h.results.visible)
	assert.Contains(t, h.results.html, `<td>M1</td><td>0.5343</td><td>3.0000</td>`)

	assert.Equal(t, 1, h.ui.resets)
	assert.Equal(t, EmptyFileLabel, h.ui.fileLabel)
	assert.Equal(t, ColorDefault, h.ui.fileLabelColor)
}

func TestSubmitSuccessMessageAutoDismisses(t *testing.T) {
	h := newHarness()
	h.uploader.On("Upload", mock.Anything, mock.Anything).Return(successResponse(t), nil)

	require.NoError(t, h.ctrl.Submit(context.Background()))
	require.Len(t, h.timers.pending, 1)
	assert.Equal(t, 5*time.Second, h.timers.pending[0].d)
	assert.True(t, h.ui.msgVisible)

	h.timers.fireAll()
	assert.False(t, h.ui.msgVisible)
}

func TestNewMessageCancelsPendingDismiss(t *testing.T) {
	h := newHarness()
	h.uploader.On("Upload", mock.Anything, mock.Anything).Return(successResponse(t), nil).Once()
	require.NoError(t, h.ctrl.Submit(context.Background()))
	require.Len(t, h.timers.pending, 1)

	// The form was reset by the successful submit, so this fails validation.
	err := h.ctrl.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, h.timers.pending[0].stopped)

	h.timers.fireAll()
	assert.True(t, h.ui.msgVisible, "error message stays visible")
	assert.Equal(t, MsgSelectCSV, h.ui.msgText)
}

func TestSubmitServerFailure(t *testing.T) {
	h := newHarness()
	h.uploader.On("Upload", mock.Anything, mock.Anything).
		Return(&Response{Success: false, Message: "Error: Input file must contain at least 3 columns"}, nil)

	err := h.ctrl.Submit(context.Background())

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Error: Input file must contain at least 3 columns", h.ui.msgText)
	assert.Equal(t, MessageError, h.ui.msgKind)
	assert.Equal(t, []bool{true, false}, h.ui.disableTrail)
	assert.Equal(t, "Calculate TOPSIS", h.ui.label)
	assert.Zero(t, h.ui.resets, "form keeps its values after a server failure")
	assert.False(t, h.results.visible)
	assert.Empty(t, h.timers.pending, "error messages do not auto-dismiss")
}

func TestSubmitTransportFailure(t *testing.T) {
	h := newHarness()
	h.uploader.On("Upload", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	err := h.ctrl.Submit(context.Background())

	require.EqualError(t, err, "connection refused")
	assert.Equal(t, "Error: connection refused", h.ui.msgText)
	assert.Equal(t, MessageError, h.ui.msgKind)
	assert.False(t, h.ui.disabled)
	assert.Equal(t, []bool{true, false}, h.ui.disableTrail)
	assert.Equal(t, "Calculate TOPSIS", h.ui.label)
}

func TestSubmitEmptyResponse(t *testing.T) {
	h := newHarness()
	h.uploader.On("Upload", mock.Anything, mock.Anything).Return(nil, nil)

	err := h.ctrl.Submit(context.Background())

	require.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, "Error: empty response", h.ui.msgText)
	assert.Equal(t, MessageError, h.ui.msgKind)
	assert.False(t, h.ui.disabled)
	assert.False(t, h.results.visible)
}

func TestSubmitWhileInFlightIsDropped(t *testing.T) {
	h := newHarness()
	var nested error
	h.uploader.observe = func() {
		nested = h.ctrl.Submit(context.Background())
	}
	h.uploader.On("Upload", mock.Anything, mock.Anything).Return(successResponse(t), nil).Once()

	require.NoError(t, h.ctrl.Submit(context.Background()))
	assert.ErrorIs(t, nested, ErrBusy)
	h.uploader.AssertNumberOfCalls(t, "Upload", 1)
}

func TestFileChanged(t *testing.T) {
	h := newHarness()

	h.ctrl.FileChanged(&File{Name: "scores.csv"})
	assert.Equal(t, "✓ scores.csv", h.ui.fileLabel)
	assert.Equal(t, ColorSelected, h.ui.fileLabelColor)

	h.ctrl.FileChanged(nil)
	assert.Equal(t, EmptyFileLabel, h.ui.fileLabel)
	assert.Equal(t, ColorDefault, h.ui.fileLabelColor)
}

type fakeHost struct {
	fileChanged func(*File)
	submit      func(context.Context)
}

func (h *fakeHost) OnFileChanged(f func(*File))      { h.fileChanged = f }
func (h *fakeHost) OnSubmit(f func(context.Context)) { h.submit = f }

func TestBindRegistersHandlers(t *testing.T) {
	h := newHarness()
	host := &fakeHost{}
	h.ctrl.Bind(host)

	require.NotNil(t, host.fileChanged)
	require.NotNil(t, host.submit)

	host.fileChanged(&File{Name: "picked.csv"})
	assert.Equal(t, "✓ picked.csv", h.ui.fileLabel)

	h.uploader.On("Upload", mock.Anything, mock.Anything).Return(successResponse(t), nil).Once()
	host.submit(context.Background())
	h.uploader.AssertExpectations(t)
}
