package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/flip/config"
)

// csvLog appends rows of T to one CSV file. The header goes out with the
// first row.
type csvLog[T any] struct {
	name        string
	f           *os.File
	wroteHeader bool
}

func createCSVLog[T any](dir, name string) (*csvLog[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog[T]{name: name, f: f}, nil
}

func (l *csvLog[T]) write(row T) error {
	rows := []T{row}
	var err error
	if l.wroteHeader {
		err = gocsv.MarshalWithoutHeaders(rows, l.f)
	} else {
		err = gocsv.Marshal(rows, l.f)
	}
	if err != nil {
		return fmt.Errorf("appending to %s: %w", l.name, err)
	}
	l.wroteHeader = true
	return nil
}

func (l *csvLog[T]) close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}

// OutputManager writes a run's artifacts into one directory: telemetry.csv
// (one WindowStats row per window), perf.csv (one PerfStatsCSV row per
// window) and config.yaml. A nil manager discards everything.
type OutputManager struct {
	dir     string
	windows *csvLog[WindowStats]
	perf    *csvLog[PerfStatsCSV]
}

// NewOutputManager creates dir and both CSV files. An empty dir disables
// output and yields a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	windows, err := createCSVLog[WindowStats](dir, "telemetry.csv")
	if err != nil {
		return nil, err
	}
	perf, err := createCSVLog[PerfStatsCSV](dir, "perf.csv")
	if err != nil {
		windows.close()
		return nil, err
	}
	return &OutputManager{dir: dir, windows: windows, perf: perf}, nil
}

// WriteConfig stores the resolved configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends one window to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.windows.write(stats)
}

// WritePerf appends the step timings for the window ending at windowEnd.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write(stats.ToCSV(windowEnd))
}

// Dir returns the output directory, or "" when output is disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both CSV files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.windows.close(), om.perf.close())
}
