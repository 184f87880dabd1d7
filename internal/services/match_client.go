package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"alfredoptarigan/resume-studio/internal/apperror"
	"alfredoptarigan/resume-studio/internal/models"
)

var validate = validator.New()

type MatchClient interface {
	Match(ctx context.Context, file ResumeFile) (*models.MatchResult, error)
}

type matchClient struct {
	client *serviceClient
}

func NewMatchClient(url string, timeout time.Duration) MatchClient {
	return &matchClient{
		client: newServiceClient("match", url, timeout),
	}
}

// Match implements MatchClient.
func (m *matchClient) Match(ctx context.Context, file ResumeFile) (*models.MatchResult, error) {
	payload, err := m.client.post(ctx, file)
	if err != nil {
		return nil, err
	}

	return decodeMatchResult(payload)
}

func decodeMatchResult(payload []byte) (*models.MatchResult, error) {
	var resp models.MatchResponse
	if err := json.NewDecoder(bytes.NewReader(payload)).Decode(&resp); err != nil {
		return nil, apperror.MalformedResponse("match", fmt.Errorf("failed to decode response: %w", err))
	}

	if resp.Score == nil {
		return nil, apperror.MalformedResponse("match", errors.New("response has no score"))
	}

	result := &models.MatchResult{
		Score:           *resp.Score,
		MatchedKeywords: nonNil(resp.MatchedKeywords),
		MissingKeywords: nonNil(resp.MissingKeywords),
	}

	if err := validate.Struct(result); err != nil {
		return nil, apperror.MalformedResponse("match", fmt.Errorf("score out of range: %w", err))
	}

	return result, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
