package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ============================================================================
// LOAD — Raw CSV bytes into a typed frame
// ============================================================================
// gota infers column types from the cells: the flag column comes in as bool,
// precinct and jurisdiction as int, coordinates as float, the rest as
// string. Date and time columns stay string here; Clean parses them.
// ============================================================================

// nullTokens are the spellings the portal uses for missing cells.
// They are mapped to NA on load so the cleaner sees one kind of null.
var nullTokens = []string{"", "(null)"}

// Load parses raw CSV into a frame with inferred types.
func Load(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nullTokens),
	)
	if df.Err != nil {
		return df, fmt.Errorf("failed to parse CSV: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return df, fmt.Errorf("CSV contains no data rows")
	}
	return df, nil
}

// LoadBytes parses an in-memory CSV extract.
func LoadBytes(data []byte) (dataframe.DataFrame, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile parses a CSV file from disk, for runs against a saved extract.
func LoadFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
