/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/suparena/tablemigrate/storagemodels"
	"gopkg.in/yaml.v3"
)

// WriteReport encodes the run summary as YAML.
func WriteReport(w io.Writer, summary *storagemodels.RunSummary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	return enc.Close()
}

// WriteReportFile writes the run summary to path, replacing any previous report.
func WriteReportFile(path string, summary *storagemodels.RunSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating run report: %w", err)
	}
	if err := WriteReport(f, summary); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadReport decodes a run report written by WriteReport.
func ReadReport(r io.Reader) (*storagemodels.RunSummary, error) {
	var summary storagemodels.RunSummary
	if err := yaml.NewDecoder(r).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decoding run report: %w", err)
	}
	return &summary, nil
}
