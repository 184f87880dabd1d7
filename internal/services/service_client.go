package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"alfredoptarigan/resume-studio/internal/apperror"
	"alfredoptarigan/resume-studio/internal/models"
)

// maxResponseBytes bounds a service response. The enhancer returns a base64
// encoded PDF, so this is well above the upload limit.
const maxResponseBytes = 64 << 20

// serviceClient posts a resume to one remote endpoint.
type serviceClient struct {
	op         string
	url        string
	httpClient *http.Client
}

func newServiceClient(op, url string, timeout time.Duration) *serviceClient {
	return &serviceClient{
		op:  op,
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// post sends file and returns the body of a 2xx response. Every failure is
// an *apperror.UploadError.
func (s *serviceClient) post(ctx context.Context, file ResumeFile) ([]byte, error) {
	body, contentType, err := buildResumeForm(file)
	if err != nil {
		return nil, apperror.New(apperror.KindInternal, s.op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return nil, apperror.New(apperror.KindInternal, s.op, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return nil, apperror.Network(s.op, ctxErr)
		}
		return nil, apperror.Network(s.op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperror.Network(s.op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.Status(s.op, resp.StatusCode, serviceErrorMessage(payload))
	}

	return payload, nil
}

// serviceErrorMessage pulls the "error" field out of a failure body.
func serviceErrorMessage(payload []byte) string {
	var body models.ServiceErrorBody
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(truncate(string(payload), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
