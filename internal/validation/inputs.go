// Package validation checks the analyzer's input files and output
// directories before any stage runs, so a bad path fails at startup with a
// clear message instead of mid-pipeline.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// InputValidator validates input files and output directories.
type InputValidator struct {
	logger *slog.Logger
}

// NewInputValidator creates a validator.
func NewInputValidator(logger *slog.Logger) *InputValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InputValidator{logger: logger}
}

// ValidateWorkbook checks that the survey workbook exists, is a regular
// file, is readable, and has a spreadsheet extension.
func (v *InputValidator) ValidateWorkbook(path string) error {
	if err := v.validateReadableFile(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".xlsm" {
		v.logger.Error("Survey workbook has unexpected extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("survey workbook %s is not an Excel file", path)
	}
	return nil
}

// ValidateCSV checks that a CSV input exists and is readable.
func (v *InputValidator) ValidateCSV(path string) error {
	if err := v.validateReadableFile(path); err != nil {
		return err
	}
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return fmt.Errorf("%s is not a CSV file", path)
	}
	return nil
}

// ValidateOutputDirectory ensures the directory exists (creating it if
// needed) and is writable.
func (v *InputValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Probe writability with a throwaway file.
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)
	return nil
}

// validateReadableFile checks existence, regularity, and readability.
func (v *InputValidator) validateReadableFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
