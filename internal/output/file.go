package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/log"
	"github.com/tradebump/tradebump/internal/types"
)

// FileWriter appends every cycle report as one json line to a file
type FileWriter struct {
	*config.OutputConfig
}

// NewFileWriter returns a new FileWriter
func NewFileWriter(oc *config.OutputConfig) (*FileWriter, error) {
	if oc.File == "" {
		return nil, errors.New("file needs to be specified for the FileWriter")
	}
	if dir := filepath.Dir(oc.File); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return &FileWriter{OutputConfig: oc}, nil
}

func (w *FileWriter) Write(ctx context.Context, report types.CycleReport) error {
	logger := log.LoggerFromContext(ctx).With(slog.String("writer", string(FILE_WRITER_TYPE)))

	// Don't escape html characters, listing urls may contain '&'.
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("error while encoding report: %w", err)
	}

	f, err := os.OpenFile(w.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error while trying to open file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("error while writing report to file: %w", err)
	}
	logger.Debug(fmt.Sprintf("wrote report of cycle %d to file %s", report.Cycle, w.File))
	return nil
}
