package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"alfredoptarigan/resume-studio/internal/apperror"
	"alfredoptarigan/resume-studio/internal/models"
)

type EnhanceClient interface {
	Enhance(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error)
}

// EnhanceOutcome is a decoded enhancement response. DocumentErr is set when
// enhanced_pdf was present but not valid base64; the suggestions are still
// usable in that case.
type EnhanceOutcome struct {
	models.EnhanceResult
	DocumentErr error
}

type enhanceClient struct {
	client *serviceClient
}

func NewEnhanceClient(url string, timeout time.Duration) EnhanceClient {
	return &enhanceClient{
		client: newServiceClient("enhance", url, timeout),
	}
}

// Enhance implements EnhanceClient.
func (e *enhanceClient) Enhance(ctx context.Context, file ResumeFile) (*EnhanceOutcome, error) {
	payload, err := e.client.post(ctx, file)
	if err != nil {
		return nil, err
	}

	return decodeEnhanceResult(payload)
}

func decodeEnhanceResult(payload []byte) (*EnhanceOutcome, error) {
	var resp models.EnhanceResponse
	if err := json.NewDecoder(bytes.NewReader(payload)).Decode(&resp); err != nil {
		return nil, apperror.MalformedResponse("enhance", fmt.Errorf("failed to decode response: %w", err))
	}

	outcome := &EnhanceOutcome{
		EnhanceResult: models.EnhanceResult{
			Suggestions: nonNil(resp.Suggestions),
		},
	}

	if resp.EnhancedPDF != nil && *resp.EnhancedPDF != "" {
		doc, err := base64.StdEncoding.DecodeString(*resp.EnhancedPDF)
		if err != nil {
			outcome.DocumentErr = apperror.MalformedDocument("enhance", fmt.Errorf("failed to decode enhanced_pdf: %w", err))
		} else {
			outcome.Document = doc
		}
	}

	return outcome, nil
}
