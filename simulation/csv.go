package simulation

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

var csvHeader = []string{"Round", "Accuracy", "TestLoss", "TrainingLoss"}

type csvRecorder struct {
	file *os.File
	w    *csv.Writer
}

// NewCSVRecorder truncates path and writes the metrics header. Accuracy is
// written as a percentage.
func NewCSVRecorder(path string) (Recorder, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove metrics file: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics file: %w", err)
	}

	cr := &csvRecorder{file: f, w: csv.NewWriter(f)}
	if err := cr.write(csvHeader); err != nil {
		f.Close()

		return nil, err
	}

	return cr, nil
}

func (cr *csvRecorder) Record(_ context.Context, m RoundMetrics) error {
	return cr.write([]string{
		strconv.Itoa(m.Round),
		strconv.FormatFloat(m.Accuracy*100, 'f', 4, 64),
		strconv.FormatFloat(m.TestLoss, 'f', 4, 64),
		strconv.FormatFloat(m.TrainingLoss, 'f', 4, 64),
	})
}

func (cr *csvRecorder) Close() error {
	return cr.file.Close()
}

func (cr *csvRecorder) write(row []string) error {
	if err := cr.w.Write(row); err != nil {
		return fmt.Errorf("failed to write metrics row: %w", err)
	}
	cr.w.Flush()
	if err := cr.w.Error(); err != nil {
		return fmt.Errorf("failed to write metrics row: %w", err)
	}

	return nil
}
