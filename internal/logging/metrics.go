package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"reactorai/internal/engine"
)

// Writer streams per-generation statistics to a CSV file and a JSONL
// file, and echoes a one-line summary to stdout.
type Writer struct {
	csvFile   *os.File
	csvWriter *csv.Writer
	jsonFile  *os.File
}

// NewWriter opens both output files, creating parent directories as
// needed.
func NewWriter(csvPath, jsonPath string) (*Writer, error) {
	for _, p := range []string{csvPath, jsonPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, err
		}
	}

	csvFile, err := os.Create(csvPath)
	if err != nil {
		return nil, err
	}
	jsonFile, err := os.Create(jsonPath)
	if err != nil {
		csvFile.Close()
		return nil, err
	}

	w := &Writer{
		csvFile:   csvFile,
		csvWriter: csv.NewWriter(csvFile),
		jsonFile:  jsonFile,
	}

	header := []string{
		"generation", "best_fitness", "mean_fitness", "std_fitness",
		"mutation_rate", "tournament_size", "cache_size", "regenerated",
	}
	if err := w.csvWriter.Write(header); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Log appends one generation's statistics to both files.
func (w *Writer) Log(s engine.GenerationStats) {
	row := []string{
		strconv.Itoa(s.Generation),
		fmt.Sprintf("%.3f", s.BestFitness),
		fmt.Sprintf("%.3f", s.MeanFitness),
		fmt.Sprintf("%.3f", s.StdFitness),
		fmt.Sprintf("%.4f", s.MutationRate),
		strconv.Itoa(s.TournamentSize),
		strconv.Itoa(s.CacheSize),
		strconv.Itoa(s.Regenerated),
	}
	w.csvWriter.Write(row)
	w.csvWriter.Flush()

	line, _ := json.Marshal(s)
	w.jsonFile.WriteString(string(line) + "\n")

	fmt.Printf("Gen %4d | Best: %9.2f | Mean: %9.2f | Rate: %.4f | K: %3d | Cache: %6d | Regen: %d\n",
		s.Generation, s.BestFitness, s.MeanFitness, s.MutationRate, s.TournamentSize, s.CacheSize, s.Regenerated)
}

// Close flushes and closes both files.
func (w *Writer) Close() {
	if w.csvWriter != nil {
		w.csvWriter.Flush()
	}
	if w.csvFile != nil {
		w.csvFile.Close()
	}
	if w.jsonFile != nil {
		w.jsonFile.Close()
	}
}
