package incident

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Sample data filenames, resolved relative to the data directory.
const (
	ErrorDocFile = "sample_sentry.json"
	TraceDocFile = "sample_galileo.json"
	CodeFile     = "broken_code.py"
)

// LoadSample reads the sample error-tracking document, trace document and
// buggy code snippet from dir and derives the summaries.
//
// Both JSON documents are required: if either is missing or malformed the
// load fails and both summaries stay unset, but the returned bundle still
// carries the code snippet so it can be shown alongside the error. A missing
// code snippet only degrades the bundle (empty code text plus a warning),
// since the review rules tolerate empty input.
func LoadSample(dir string) (*Bundle, error) {
	b := &Bundle{}

	codePath := filepath.Join(dir, CodeFile)
	code, err := os.ReadFile(codePath)
	switch {
	case err == nil:
		b.Code = string(code)
	case errors.Is(err, fs.ErrNotExist):
		b.Warnings = append(b.Warnings, fmt.Sprintf("file not found: %s", codePath))
	default:
		b.Warnings = append(b.Warnings, fmt.Sprintf("could not read code file %s: %v", codePath, err))
	}

	errorDoc, err := loadJSON(filepath.Join(dir, ErrorDocFile))
	if err != nil {
		return b, err
	}
	traceDoc, err := loadJSON(filepath.Join(dir, TraceDocFile))
	if err != nil {
		return b, err
	}

	b.Incident, b.Trace = Derive(errorDoc, traceDoc)
	return b, nil
}

func loadJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not parse JSON in %s: %w", path, err)
	}
	return doc, nil
}
