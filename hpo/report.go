package hpo

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{
	"Topology", "LearningRate", "SamplesPerRound", "ClientFraction",
	"RoundsToSuccess", "FinalAccuracy", "FinalLoss", "Converged",
}

// WriteCSV writes one row per result in the given order. Topologies are
// dash separated and unreached rounds are written as Unreached.
func WriteCSV(path string, results []Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			joinInts(r.Topology, "-"),
			strconv.FormatFloat(r.LearningRate, 'g', -1, 64),
			strconv.Itoa(r.SamplesPerRound),
			strconv.FormatFloat(r.ClientFraction, 'g', -1, 64),
			strconv.Itoa(r.RoundsToSuccess),
			strconv.FormatFloat(r.FinalAccuracy, 'f', 4, 64),
			strconv.FormatFloat(r.FinalLoss, 'f', 4, 64),
			strconv.FormatBool(r.Converged),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	return f.Close()
}

func WriteBestConfig(path string, best Result) error {
	data, err := json.MarshalIndent(best, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write best configuration: %w", err)
	}

	return nil
}
