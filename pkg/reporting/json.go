package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

// SessionReport is the machine-readable record of one sized trade and the exit
// actions taken on it, written alongside the console output for later review.
type SessionReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Signal      types.SignalContext `json:"signal"`
	Sizing      types.SizingResult `json:"sizing"`
	Prices      []float64          `json:"prices,omitempty"`
	Actions     []types.ExitAction `json:"actions,omitempty"`
}

// WriteSessionJSON writes a session report as indented JSON, creating the
// output directory when needed.
func WriteSessionJSON(report SessionReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}
