package beancount

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/pathutil"
)

// Repository defines the interface for Beancount file operations.
type Repository interface {
	// AppendEntries appends formatted entries to a monthly file
	AppendEntries(yearMonth string, entries ...string) (string, error)

	// ReadMonthFile reads the content of a monthly file
	ReadMonthFile(yearMonth string) (string, error)

	// MonthFileExists checks if a monthly file exists
	MonthFileExists(yearMonth string) bool

	// GetMonthFilesInYear gets all monthly files in a year
	GetMonthFilesInYear(year string) ([]string, error)
}

// FileSystemRepository stores monthly Beancount files under the export root.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
	currency     string
	now          func() time.Time
}

// NewFileSystemRepository creates a new FileSystemRepository. New files
// declare currency as their operating currency.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver, currency string) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
		currency:     currency,
		now:          time.Now,
	}
}

// AppendEntries appends entries to the file for yearMonth, creating it with
// a header first if needed, and returns the file path. Entries are separated
// by a blank line and written with a single write.
func (r *FileSystemRepository) AppendEntries(yearMonth string, entries ...string) (string, error) {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to get month file path: %w", err)
	}
	if len(entries) == 0 {
		return filePath, nil
	}

	if err := r.ensureMonthFile(yearMonth, filePath); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e)
		if !strings.HasSuffix(e, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file for appending: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(sb.String()); err != nil {
		return "", fmt.Errorf("failed to write to file: %w", err)
	}
	return filePath, nil
}

// ReadMonthFile reads the content of a monthly file.
// Returns empty string if file doesn't exist.
func (r *FileSystemRepository) ReadMonthFile(yearMonth string) (string, error) {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return "", fmt.Errorf("failed to get month file path: %w", err)
	}

	if !r.pathResolver.FileExists(filePath) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// MonthFileExists checks if a monthly file exists.
func (r *FileSystemRepository) MonthFileExists(yearMonth string) bool {
	filePath, err := r.pathResolver.GetMonthFilePath(yearMonth)
	if err != nil {
		return false
	}
	return r.pathResolver.FileExists(filePath)
}

// GetMonthFilesInYear returns the months that have a file in year, sorted
// (e.g., ["2024-01", "2024-02"]).
func (r *FileSystemRepository) GetMonthFilesInYear(year string) ([]string, error) {
	yearDir := r.pathResolver.GetYearDir(year)
	if !r.pathResolver.FileExists(yearDir) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(yearDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read year directory: %w", err)
	}

	var months []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".beancount" {
			continue
		}
		months = append(months, strings.TrimSuffix(entry.Name(), ".beancount"))
	}
	slices.Sort(months)
	return months, nil
}

func (r *FileSystemRepository) ensureMonthFile(yearMonth, filePath string) error {
	if r.pathResolver.FileExists(filePath) {
		return nil
	}

	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	header := fmt.Sprintf("; SafeFlow export for %s\n; Generated at %s\n",
		yearMonth, r.now().Format(time.RFC3339))
	if r.currency != "" {
		header += fmt.Sprintf("option \"operating_currency\" \"%s\"\n", r.currency)
	}
	header += "\n"

	if err := os.WriteFile(filePath, []byte(header), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
