// internal/uploader/submitter.go
package uploader

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"smarttender-engine/internal/common/errors"
	commonhttp "smarttender-engine/internal/common/http"
	"smarttender-engine/internal/common/logger"
	"smarttender-engine/internal/common/metrics"

	"github.com/google/uuid"
)

// Submitter packages local documents into multipart payloads and posts
// them to the intelligence backend. Submissions are fire-and-forget:
// a 2xx-or-any response body is not inspected, only transport failure
// blocks the step from advancing.
type Submitter struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewSubmitter(config *Config, log logger.Logger) *Submitter {
	return &Submitter{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"component": "uploader"}),
	}
}

// SubmitTender posts one tender document as multipart field "file".
func (s *Submitter) SubmitTender(ctx context.Context, doc Document) (*Acceptance, error) {
	body, contentType, err := buildMultipart("file", []Document{doc})
	if err != nil {
		return nil, errors.NewUploadRejectedError(KindTender, err)
	}

	if err := s.post(ctx, s.config.TenderURL, body, contentType); err != nil {
		metrics.UploadsSubmitted.WithLabelValues(KindTender, "transport_failure").Inc()
		s.logger.Error("tender upload failed", map[string]interface{}{
			"file":  doc.Name,
			"error": err,
		})
		return nil, errors.NewUploadRejectedError(KindTender, err)
	}

	metrics.UploadsSubmitted.WithLabelValues(KindTender, "accepted").Inc()
	acceptance := s.accept(KindTender, 1)
	s.logger.Info("tender submitted", map[string]interface{}{
		"file":  doc.Name,
		"token": acceptance.Token,
	})
	return acceptance, nil
}

// SubmitCVs posts a bounded batch of CV documents as repeated
// multipart field "files".
func (s *Submitter) SubmitCVs(ctx context.Context, docs []Document) (*Acceptance, error) {
	if len(docs) == 0 {
		return nil, errors.NewUploadRejectedError(KindCVs, io.ErrUnexpectedEOF)
	}
	if len(docs) > s.config.MaxCVBatch {
		return nil, errors.NewBatchLimitExceededError(len(docs), s.config.MaxCVBatch)
	}

	body, contentType, err := buildMultipart("files", docs)
	if err != nil {
		return nil, errors.NewUploadRejectedError(KindCVs, err)
	}

	if err := s.post(ctx, s.config.CVsURL, body, contentType); err != nil {
		metrics.UploadsSubmitted.WithLabelValues(KindCVs, "transport_failure").Inc()
		s.logger.Error("CV batch upload failed", map[string]interface{}{
			"count": len(docs),
			"error": err,
		})
		return nil, errors.NewUploadRejectedError(KindCVs, err)
	}

	metrics.UploadsSubmitted.WithLabelValues(KindCVs, "accepted").Inc()
	acceptance := s.accept(KindCVs, len(docs))
	s.logger.Info("CV batch submitted", map[string]interface{}{
		"count": len(docs),
		"token": acceptance.Token,
	})
	return acceptance, nil
}

func (s *Submitter) post(ctx context.Context, url string, body *bytes.Buffer, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused. The response body carries
	// no contract the engine consumes.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *Submitter) accept(kind string, documents int) *Acceptance {
	return &Acceptance{
		Token:       uuid.New().String(),
		Kind:        kind,
		Documents:   documents,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func buildMultipart(field string, docs []Document) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, doc := range docs {
		part, err := writer.CreateFormFile(field, doc.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, doc.Content); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
