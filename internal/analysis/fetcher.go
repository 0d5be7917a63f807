// internal/analysis/fetcher.go
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"smarttender-engine/internal/common/errors"
	commonhttp "smarttender-engine/internal/common/http"
	"smarttender-engine/internal/common/logger"
	"smarttender-engine/internal/common/metrics"
)

// Fetcher retrieves the computed tender requirements and ranked
// candidate list. One fetch per results-view activation; the session
// machine owns that guarantee, the fetcher itself is stateless.
type Fetcher struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewFetcher(config *Config, log logger.Logger) *Fetcher {
	return &Fetcher{
		config: config,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"component": "analysis"}),
	}
}

// Fetch issues the analyze call and classifies its outcome into
// exactly one of {ready, empty, server_error, transport_error}.
func (f *Fetcher) Fetch(ctx context.Context) *Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.AnalyzeURL, nil)
	if err != nil {
		return f.record(&Result{
			Classification: ClassTransportError,
			Err:            errors.NewTransportFailureError(err),
		})
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("analyze call failed", map[string]interface{}{"error": err})
		return f.record(&Result{
			Classification: ClassTransportError,
			Err:            errors.NewTransportFailureError(err),
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return f.record(&Result{
			Classification: ClassTransportError,
			Err:            errors.NewTransportFailureError(err),
		})
	}

	return f.record(Classify(resp.StatusCode, body))
}

// Classify maps one HTTP outcome to a Result. Pure: the same status
// and body always classify the same way, and a ready result always
// carries a non-empty roster.
func Classify(status int, body []byte) *Result {
	if status < 200 || status > 299 {
		return &Result{
			Classification: ClassServerError,
			Err:            errors.NewServerFailureError(serverMessage(status, body), status),
		}
	}

	if err := validatePayload(body); err != nil {
		return &Result{
			Classification: ClassServerError,
			Err:            errors.NewInvalidPayloadError(err.Error()),
		}
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return &Result{
			Classification: ClassServerError,
			Err:            errors.NewInvalidPayloadError(err.Error()),
		}
	}

	if len(p.Candidates) == 0 {
		return &Result{Classification: ClassEmpty}
	}

	return &Result{
		Classification: ClassReady,
		Requirements:   p.TenderRequirements,
		Roster:         p.Candidates,
	}
}

// serverMessage extracts the backend's error field if the failure body
// is structured JSON, else falls back to the generic status message.
func serverMessage(status int, body []byte) string {
	var errBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error != "" {
		return errBody.Error
	}
	return fmt.Sprintf("Server error: %d", status)
}

func (f *Fetcher) record(r *Result) *Result {
	metrics.AnalysisFetches.WithLabelValues(string(r.Classification)).Inc()
	f.logger.Info("analysis classified", map[string]interface{}{
		"classification": string(r.Classification),
		"candidates":     len(r.Roster),
	})
	return r
}
