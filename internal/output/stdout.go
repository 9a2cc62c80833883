package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/tradebump/tradebump/internal/types"
	"github.com/tradebump/tradebump/internal/utils"
)

// StdoutWriter prints each cycle report as a table
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter returns a new StdoutWriter
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout}
}

func (w *StdoutWriter) Write(ctx context.Context, report types.CycleReport) error {
	if len(report.Results) == 0 {
		_, err := fmt.Fprintf(w.out, "cycle %d: nothing to bump\n", report.Cycle)
		return err
	}

	table := tablewriter.NewWriter(w.out)
	table.Header("#", "Trade", "Outcome", "Elapsed")
	for _, r := range report.Results {
		if err := table.Append([]string{
			strconv.Itoa(r.Index),
			utils.ShortenString(r.URL, 60),
			string(r.Outcome),
			fmt.Sprintf("%ds", r.ElapsedSeconds),
		}); err != nil {
			return err
		}
	}
	table.Footer("", fmt.Sprintf("cycle %d", report.Cycle), fmt.Sprintf("%d ok / %d failed", report.NrSucceeded(), report.NrFailed()), "")
	return table.Render()
}
