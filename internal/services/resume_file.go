package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ResumeField is the multipart field name both resume services read.
const ResumeField = "resume"

// ResumeFile is one selected resume, held in memory for a single request.
type ResumeFile struct {
	Filename string
	Content  []byte
}

func NewResumeFile(file *multipart.FileHeader) (ResumeFile, error) {
	src, err := file.Open()
	if err != nil {
		return ResumeFile{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return ResumeFile{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return ResumeFile{Filename: file.Filename, Content: content}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildResumeForm encodes file as a multipart body with a single part named
// "resume". The part's Content-Type is sniffed from the bytes; the picker's
// .pdf filter is only a hint, so nothing is rejected here.
func buildResumeForm(file ResumeFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		ResumeField, quoteEscaper.Replace(file.Filename)))
	header.Set("Content-Type", mimetype.Detect(file.Content).String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
