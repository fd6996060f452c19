package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
)

// UploadField is the multipart form field holding the file.
const UploadField = "file"

// uploadContent returns a reader over the uploaded bytes. Raw bodies are
// passed through; for multipart bodies the first part named UploadField is
// streamed without buffering the whole form.
func uploadContent(r *http.Request) (io.Reader, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedMediaType, err)
	}

	switch mediaType {
	case "application/octet-stream":
		return r.Body, nil
	case "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("%w: missing boundary", ErrMalformedPayload)
		}
		return filePart(multipart.NewReader(r.Body, boundary))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

func filePart(mr *multipart.Reader) (io.Reader, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no %q part", ErrMalformedPayload, UploadField)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}

		if part.FormName() == UploadField {
			return &partReader{part: part}, nil
		}
		_ = part.Close()
	}
}

// partReader tags read failures so a truncated multipart body is reported
// as a malformed payload rather than an internal error.
type partReader struct {
	part *multipart.Part
}

func (p *partReader) Read(b []byte) (int, error) {
	n, err := p.part.Read(b)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return n, err
}
