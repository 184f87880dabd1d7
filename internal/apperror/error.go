package apperror

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies why a call to a remote resume service failed.
type Kind string

const (
	KindNetwork           Kind = "network"
	KindStatus            Kind = "status"
	KindMalformedResponse Kind = "malformed_response"
	KindMalformedDocument Kind = "malformed_document"
	KindCanceled          Kind = "canceled"
	KindInternal          Kind = "internal"
)

type UploadError struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) *UploadError {
	return &UploadError{Kind: kind, Op: op, Err: err}
}

func Network(op string, err error) *UploadError {
	if errors.Is(err, context.Canceled) {
		return New(KindCanceled, op, err)
	}
	return New(KindNetwork, op, err)
}

func Status(op string, status int, message string) *UploadError {
	return &UploadError{Kind: KindStatus, Op: op, Status: status, Message: message}
}

func MalformedResponse(op string, err error) *UploadError {
	return New(KindMalformedResponse, op, err)
}

func MalformedDocument(op string, err error) *UploadError {
	return New(KindMalformedDocument, op, err)
}

// KindOf reports the Kind carried by err, KindInternal when err is not an
// UploadError.
func KindOf(err error) Kind {
	var upErr *UploadError
	if errors.As(err, &upErr) {
		return upErr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindInternal
}

// UserMessage is the short text shown on the page for a failed upload.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNetwork:
		return "The service could not be reached. Please try again later."
	case KindStatus:
		var upErr *UploadError
		if errors.As(err, &upErr) && upErr.Message != "" {
			return fmt.Sprintf("The service rejected the resume: %s", upErr.Message)
		}
		return "The service rejected the resume."
	case KindMalformedResponse:
		return "The service returned an unexpected response."
	case KindMalformedDocument:
		return "The enhanced resume could not be decoded."
	case KindCanceled:
		return "The upload was replaced by a newer one."
	default:
		return "Something went wrong while processing the resume."
	}
}
