package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Topsis/internal/form"
	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

// HTTPClient talks to the upload server. It satisfies form.Uploader.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client for baseURL. A zero timeout leaves request
// lifetime to the transport and the caller's context.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upload posts the form as multipart data and decodes the JSON reply. Replies
// with success=false are returned as a response, not an error, whatever their
// HTTP status.
func (c *HTTPClient) Upload(ctx context.Context, in form.Input) (*upload.Response, error) {
	body, contentType, err := encodeForm(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+upload.UploadPath, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out upload.Response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("upload %d: decode response: %w", resp.StatusCode, err)
	}
	return &out, nil
}

func encodeForm(in form.Input) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if in.File != nil {
		fw, err := mw.CreateFormFile(upload.FieldFile, in.File.Name)
		if err != nil {
			return nil, "", fmt.Errorf("encode file: %w", err)
		}
		if _, err := fw.Write(in.File.Data); err != nil {
			return nil, "", fmt.Errorf("encode file: %w", err)
		}
	}
	fields := [][2]string{
		{upload.FieldWeights, in.Weights},
		{upload.FieldImpacts, in.Impacts},
		{upload.FieldEmail, in.Email},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("topsis %s %s: %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// Download streams a result file into w.
func (c *HTTPClient) Download(ctx context.Context, resultFile string, w io.Writer) (int64, error) {
	resp, err := c.doReq(ctx, http.MethodGet, upload.DownloadURL(resultFile))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(w, resp.Body)
}

func (c *HTTPClient) Example(ctx context.Context) (*upload.Example, error) {
	resp, err := c.doReq(ctx, http.MethodGet, upload.ExamplePath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ex upload.Example
	if err := json.NewDecoder(resp.Body).Decode(&ex); err != nil {
		return nil, fmt.Errorf("decode example: %w", err)
	}
	return &ex, nil
}
