package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flowbit/invoice-analytics/internal/extract"
)

// LoadRecords reads a JSON array of extraction records from path. A file that
// cannot be read or decoded is a failure of the input sequence itself and
// aborts the whole run, unlike per-record problems.
func LoadRecords(path string) ([]extract.ExtractionRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}

	var records []extract.ExtractionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode records file: %w", err)
	}
	return records, nil
}
