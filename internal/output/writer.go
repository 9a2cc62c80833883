// Package output provides the interface and implementations for writers of cycle reports
package output

import (
	"context"
	"fmt"

	"github.com/tradebump/tradebump/internal/config"
	"github.com/tradebump/tradebump/internal/types"
)

// Writer defines the interface for all writers that are responsible
// for writing a cycle report to a specific output. An error returned by
// Write is logged by the caller and never stops the bump loop.
type Writer interface {
	Write(ctx context.Context, report types.CycleReport) error
}

// WriterType encapsulates the type of a writer
// See below constants for possible types
type WriterType string

const (
	STDOUT_WRITER_TYPE WriterType = "stdout"
	FILE_WRITER_TYPE   WriterType = "file"
	API_WRITER_TYPE    WriterType = "api"
)

// NewWriter returns a new writer depending on the writer type
func NewWriter(oc *config.OutputConfig) (Writer, error) {
	switch WriterType(oc.Type) {
	case STDOUT_WRITER_TYPE, "":
		return NewStdoutWriter(), nil
	case FILE_WRITER_TYPE:
		return NewFileWriter(oc)
	case API_WRITER_TYPE:
		return NewAPIWriter(oc)
	default:
		return nil, fmt.Errorf("writer of type '%s' not implemented", oc.Type)
	}
}
