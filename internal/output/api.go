package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/log"
	"github.com/tradebump/tradebump/internal/types"
)

// APIWriter posts every cycle report as json to a webhook.
type APIWriter struct {
	*config.OutputConfig
	client *http.Client
}

// NewAPIWriter returns a new APIWriter
func NewAPIWriter(oc *config.OutputConfig) (*APIWriter, error) {
	if oc.Uri == "" {
		return nil, errors.New("uri needs to be specified for the APIWriter")
	}
	return &APIWriter{
		OutputConfig: oc,
		client: &http.Client{
			Timeout: time.Second * 60,
		},
	}, nil
}

func (w *APIWriter) Write(ctx context.Context, report types.CycleReport) error {
	logger := log.LoggerFromContext(ctx).With(slog.String("writer", string(API_WRITER_TYPE)))

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("error while marshaling report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Uri, bytes.NewBuffer(reportJSON))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.User != "" {
		req.SetBasicAuth(w.User, w.Password)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("error while sending post request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error while reading post request response: %w", err)
		}
		return fmt.Errorf("error while posting report. Status Code: %d Response: %s", resp.StatusCode, body)
	}
	logger.Debug(fmt.Sprintf("successfully posted report of cycle %d", report.Cycle))
	return nil
}
