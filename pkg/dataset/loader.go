package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	MetadataFile  = "motion_metadata.csv"
	MotionDataDir = "motion_data"
)

type Loader struct {
	basePath string
	logger   *slog.Logger
}

func NewLoader(basePath string, logger *slog.Logger) *Loader {
	return &Loader{
		basePath: basePath,
		logger:   logger,
	}
}

// Load reads the metadata index and every motion file it references.
// A missing metadata file is fatal; unreadable motion files are skipped
// and counted.
func (l *Loader) Load(ctx context.Context) ([]MotionSample, int, error) {
	metaPath := filepath.Join(l.basePath, MetadataFile)
	f, err := os.Open(metaPath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: could not open metadata file %s: %w", ErrIO, metaPath, err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrIO, metaPath, err)
	}

	var (
		samples []MotionSample
		skipped int
	)
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}

		sample, err := l.loadSample(row)
		if err != nil {
			skipped++
			l.logger.Warn("Skipping motion sample",
				slog.Int("row", i+2),
				slog.Any("error", err),
			)

			continue
		}
		samples = append(samples, sample)
	}

	return samples, skipped, nil
}

func (l *Loader) loadSample(row []string) (MotionSample, error) {
	if len(row) < 4 {
		return MotionSample{}, fmt.Errorf("%w: expected 4 metadata fields, got %d", ErrMalformedRow, len(row))
	}

	id, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return MotionSample{}, fmt.Errorf("%w: sample_id: %w", ErrMalformedRow, err)
	}
	label, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return MotionSample{}, fmt.Errorf("%w: label: %w", ErrMalformedRow, err)
	}

	sample := MotionSample{
		SampleID:  id,
		Timestamp: strings.TrimSpace(row[1]),
		Label:     label,
		Filename:  strings.TrimSpace(row[3]),
	}
	if err := l.loadMotion(&sample); err != nil {
		return MotionSample{}, fmt.Errorf("%s: %w", sample.Filename, err)
	}

	return sample, nil
}

func (l *Loader) loadMotion(sample *MotionSample) error {
	f, err := os.Open(filepath.Join(l.basePath, MotionDataDir, sample.Filename))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	sample.AccX = make([]float32, 0, len(rows))
	sample.AccY = make([]float32, 0, len(rows))
	sample.AccZ = make([]float32, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			return fmt.Errorf("%w: expected 4 motion fields, got %d", ErrMalformedRow, len(row))
		}
		var acc [3]float32
		for axis := range acc {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[axis+1]), 32)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedRow, err)
			}
			acc[axis] = float32(v)
		}
		sample.AccX = append(sample.AccX, acc[0])
		sample.AccY = append(sample.AccY, acc[1])
		sample.AccZ = append(sample.AccZ, acc[2])
	}

	return nil
}

// readRows returns every record after the header line.
func readRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, err
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
