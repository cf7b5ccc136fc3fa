package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Topsis/internal/dataset"
	"github.com/MikeSquared-Agency/Topsis/internal/events"
	"github.com/MikeSquared-Agency/Topsis/internal/mailer"
	"github.com/MikeSquared-Agency/Topsis/internal/metrics"
	"github.com/MikeSquared-Agency/Topsis/internal/results"
	"github.com/MikeSquared-Agency/Topsis/internal/store"
	"github.com/MikeSquared-Agency/Topsis/internal/topsis"
	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

const MsgCompleted = "TOPSIS analysis completed successfully!"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type UploadHandler struct {
	results     *results.Store
	mailer      mailer.Sender
	store       store.Store
	events      events.Publisher
	metrics     *metrics.Metrics
	maxBytes    int64
	previewRows int
	now         func() time.Time
	logger      *slog.Logger
}

func NewUploadHandler(d Deps) *UploadHandler {
	return &UploadHandler{
		results:     d.Results,
		mailer:      d.Mailer,
		store:       d.Store,
		events:      d.Events,
		metrics:     d.Metrics,
		maxBytes:    d.Config.Server.MaxUploadBytes,
		previewRows: d.Config.Storage.PreviewRows,
		now:         time.Now,
		logger:      d.Logger,
	}
}

// badRequest is an upload rejected before or during analysis.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func reject(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

type submission struct {
	filename string
	data     []byte
	weights  string
	impacts  string
	email    string
	criteria topsis.Criteria
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sub, err := h.readSubmission(w, r)
	if err != nil {
		h.fail(w, "", "validate", err)
		return
	}

	tbl, res, err := h.analyse(sub)
	if err != nil {
		h.fail(w, sub.filename, "analyse", err)
		return
	}

	var csvBuf bytes.Buffer
	if err := tbl.WriteCSV(&csvBuf); err != nil {
		h.fail(w, sub.filename, "save", err)
		return
	}
	resultFile, err := h.results.SaveResult(tbl)
	if err != nil {
		h.fail(w, sub.filename, "save", err)
		return
	}

	emailErr := h.sendEmail(r.Context(), sub, resultFile, csvBuf.Bytes())
	emailStatus := mailer.Status(emailErr)

	run := &store.Run{
		InputFile:   sub.filename,
		ResultFile:  resultFile,
		Email:       sub.email,
		Weights:     sub.weights,
		Impacts:     sub.impacts,
		TotalRows:   len(tbl.Rows),
		EmailStatus: emailStatus,
		CreatedAt:   h.now(),
	}
	h.record(r.Context(), run, sub.criteria.Len(), emailErr)

	h.metrics.Uploads.WithLabelValues(metrics.OutcomeSuccess).Inc()
	h.metrics.AnalysisRows.Observe(float64(len(res.Scores)))
	h.logger.Info("analysis completed",
		"run_id", run.ID,
		"input", sub.filename,
		"result", resultFile,
		"rows", len(tbl.Rows),
		"email_status", emailStatus,
	)

	writeJSON(w, http.StatusOK, upload.Response{
		Success:     true,
		Message:     MsgCompleted,
		TotalRows:   len(tbl.Rows),
		ResultFile:  resultFile,
		EmailStatus: emailStatus,
		DataPreview: tbl.Preview(h.previewRows),
	})
}

func (h *UploadHandler) readSubmission(w http.ResponseWriter, r *http.Request) (*submission, error) {
	if r.ContentLength > h.maxBytes {
		return nil, &http.MaxBytesError{Limit: h.maxBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, reject("No file provided")
	}

	file, hdr, err := r.FormFile(upload.FieldFile)
	if err != nil {
		return nil, reject("No file provided")
	}
	defer file.Close()

	sub := &submission{
		filename: hdr.Filename,
		weights:  strings.TrimSpace(r.FormValue(upload.FieldWeights)),
		impacts:  strings.TrimSpace(r.FormValue(upload.FieldImpacts)),
		email:    strings.TrimSpace(r.FormValue(upload.FieldEmail)),
	}
	if sub.filename == "" {
		return nil, reject("No file selected")
	}
	if sub.weights == "" || sub.impacts == "" {
		return nil, reject("Weights and impacts are required")
	}
	if sub.email == "" {
		return nil, reject("Email is required")
	}
	if !emailPattern.MatchString(sub.email) {
		return nil, reject("Invalid email format")
	}
	sub.criteria, err = topsis.ParseCriteria(sub.weights, sub.impacts)
	if err != nil {
		return nil, reject("%s", err.Error())
	}

	sub.data, err = io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return sub, nil
}

func (h *UploadHandler) analyse(sub *submission) (*dataset.Table, *topsis.Result, error) {
	if _, err := h.results.SaveUpload(sub.filename, sub.data); err != nil {
		if errors.Is(err, results.ErrInvalidName) {
			return nil, nil, reject("No file selected")
		}
		return nil, nil, err
	}

	tbl, err := dataset.Read(sub.filename, bytes.NewReader(sub.data))
	if err != nil {
		return nil, nil, reject("Error during TOPSIS calculation: %s", err.Error())
	}
	matrix, err := tbl.Criteria()
	if errors.Is(err, dataset.ErrTooFewColumns) || errors.Is(err, dataset.ErrNotNumeric) {
		return nil, nil, reject("Error: %s", unwrapAll(err).Error())
	}
	if err != nil {
		return nil, nil, reject("Error during TOPSIS calculation: %s", err.Error())
	}
	if sub.criteria.Len() != len(tbl.Headers)-1 {
		return nil, nil, reject("Error: %s", topsis.ErrDimensionMismatch.Error())
	}

	res, err := topsis.Compute(matrix, sub.criteria)
	if err != nil {
		return nil, nil, reject("Error during TOPSIS calculation: %s", err.Error())
	}
	if err := tbl.AppendColumns(res); err != nil {
		return nil, nil, err
	}
	return tbl, res, nil
}

// unwrapAll returns the innermost wrapped error.
func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func (h *UploadHandler) sendEmail(ctx context.Context, sub *submission, resultFile string, csv []byte) error {
	if h.mailer == nil {
		h.metrics.Emails.WithLabelValues(metrics.EmailSkipped).Inc()
		return mailer.ErrNotConfigured
	}
	msg := mailer.ResultMessage(sub.email, sub.filename, resultFile, csv, h.now())
	err := h.mailer.Send(ctx, msg)
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		h.metrics.Emails.WithLabelValues(metrics.EmailSkipped).Inc()
	case err != nil:
		h.metrics.Emails.WithLabelValues(metrics.EmailFailed).Inc()
		h.logger.Warn("email failed", "to", sub.email, "result", resultFile, "error", err)
	default:
		h.metrics.Emails.WithLabelValues(metrics.EmailSent).Inc()
	}
	return err
}

// record stores the run and publishes its events. Failures here never fail
// the upload.
func (h *UploadHandler) record(ctx context.Context, run *store.Run, criteria int, emailErr error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if h.store != nil {
		if err := h.store.CreateRun(ctx, run); err != nil {
			h.logger.Error("failed to record run", "result", run.ResultFile, "error", err)
		}
	}
	if h.events == nil {
		return
	}

	id := run.ID.String()
	h.publish(events.SubjectAnalysisCompleted(id), events.AnalysisCompletedEvent{
		RunID:      id,
		InputFile:  run.InputFile,
		ResultFile: run.ResultFile,
		TotalRows:  run.TotalRows,
		Criteria:   criteria,
		Timestamp:  run.CreatedAt,
	})

	ev := events.EmailEvent{RunID: id, Recipient: run.Email, ResultFile: run.ResultFile}
	if emailErr != nil {
		ev.Error = emailErr.Error()
		h.publish(events.SubjectEmailFailed(id), ev)
		return
	}
	h.publish(events.SubjectEmailSent(id), ev)
}

func (h *UploadHandler) publish(subject string, v interface{}) {
	if err := h.events.Publish(subject, v); err != nil {
		h.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func (h *UploadHandler) fail(w http.ResponseWriter, filename, stage string, err error) {
	var bad *badRequest
	var tooLarge *http.MaxBytesError
	status := http.StatusInternalServerError
	msg := "Server error: " + err.Error()
	outcome := metrics.OutcomeFailed

	switch {
	case errors.As(err, &bad):
		status, msg, outcome = http.StatusBadRequest, bad.msg, metrics.OutcomeInvalid
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		msg = fmt.Sprintf("File too large (limit %d bytes)", tooLarge.Limit)
		outcome = metrics.OutcomeInvalid
	default:
		h.logger.Error("upload failed", "input", filename, "stage", stage, "error", err)
	}

	h.metrics.Uploads.WithLabelValues(outcome).Inc()
	if h.events != nil {
		h.publish(events.SubjectAnalysisFailed, events.AnalysisFailedEvent{
			InputFile: filename,
			Stage:     stage,
			Error:     msg,
			Timestamp: h.now(),
		})
	}
	writeJSON(w, status, failure(msg))
}
