// Package pathutil provides centralized path management for SafeFlow data files.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver manages paths for the database, caches, rule files and exports.
type PathResolver struct {
	dataDir            string
	databasePath       string
	priceCachePath     string
	rulesPath          string
	exportRoot         string
	accountMappingPath string
}

// Config represents the configuration for PathResolver.
// Empty fields default to files inside DataDir.
type Config struct {
	// DataDir is the root directory for all SafeFlow files (e.g., ~/.safeflow)
	DataDir            string
	DatabasePath       string
	PriceCachePath     string
	RulesPath          string
	ExportRoot         string
	AccountMappingPath string
}

// New creates a new PathResolver with the given configuration.
//
// Defaults:
//   - DatabasePath: {DataDir}/safeflow.db
//   - PriceCachePath: {DataDir}/prices.db
//   - RulesPath: {DataDir}/rules.yaml
//   - ExportRoot: {DataDir}/beancount
//   - AccountMappingPath: {DataDir}/accounts.yaml
func New(config Config) *PathResolver {
	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	orDefault := func(value, name string) string {
		if value != "" {
			return value
		}
		return filepath.Join(dataDir, name)
	}

	return &PathResolver{
		dataDir:            dataDir,
		databasePath:       orDefault(config.DatabasePath, "safeflow.db"),
		priceCachePath:     orDefault(config.PriceCachePath, "prices.db"),
		rulesPath:          orDefault(config.RulesPath, "rules.yaml"),
		exportRoot:         orDefault(config.ExportRoot, "beancount"),
		accountMappingPath: orDefault(config.AccountMappingPath, "accounts.yaml"),
	}
}

// DefaultDataDir returns ~/.safeflow, or ./.safeflow when the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".safeflow"
	}
	return filepath.Join(home, ".safeflow")
}

// GetDataDir returns the data directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetDatabasePath returns the ledger database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetPriceCachePath returns the quote cache file path.
func (p *PathResolver) GetPriceCachePath() string {
	return p.priceCachePath
}

// GetRulesPath returns the categorisation rules file path.
func (p *PathResolver) GetRulesPath() string {
	return p.rulesPath
}

// GetExportRoot returns the Beancount export root directory.
func (p *PathResolver) GetExportRoot() string {
	return p.exportRoot
}

// GetAccountMappingPath returns the Beancount account mapping file path.
func (p *PathResolver) GetAccountMappingPath() string {
	return p.accountMappingPath
}

// GetYearDir returns the export directory for a year.
// Example: ~/.safeflow/beancount/2024
func (p *PathResolver) GetYearDir(year string) string {
	return filepath.Join(p.exportRoot, year)
}

// GetMonthFilePath returns the export file path for a month.
// yearMonth should be in YYYY-MM format.
// Example: ~/.safeflow/beancount/2024/2024-01.beancount
func (p *PathResolver) GetMonthFilePath(yearMonth string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}

	return filepath.Join(p.GetYearDir(parts[0]), yearMonth+".beancount"), nil
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
