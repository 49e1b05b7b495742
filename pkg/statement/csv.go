// Package statement reads bank statement exports into import rows.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/ledger"
	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/models"
)

// DefaultDateLayout is used when a mapping does not name one.
const DefaultDateLayout = "2006-01-02"

// Mapping describes the columns of a CSV statement. Column names are matched
// against the header row case-insensitively.
//
// Either Amount (signed, negative for money out) or Debit and Credit must be set.
type Mapping struct {
	Date        string `yaml:"date"`
	DateLayout  string `yaml:"date_layout"`
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
	Debit       string `yaml:"debit"`
	Credit      string `yaml:"credit"`
	Delimiter   string `yaml:"delimiter"`
}

// DefaultMapping matches statements with Date, Description and Amount columns.
var DefaultMapping = Mapping{Date: "date", Description: "description", Amount: "amount"}

// LoadMapping reads a YAML column mapping.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("failed to read mapping file: %w", err)
	}
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Mapping{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return m, nil
}

func (m Mapping) validate() error {
	if m.Date == "" || m.Description == "" {
		return errors.New("mapping needs date and description columns")
	}
	if m.Amount == "" && (m.Debit == "" || m.Credit == "") {
		return errors.New("mapping needs an amount column or both debit and credit columns")
	}
	if len([]rune(m.Delimiter)) > 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", m.Delimiter)
	}
	return nil
}

// ReadCSV parses a statement with a header row into import rows for
// accountID. Rows with a zero amount are skipped.
func ReadCSV(r io.Reader, accountID string, m Mapping) ([]ledger.NewTransaction, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	layout := m.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if m.Delimiter != "" {
		reader.Comma = []rune(m.Delimiter)[0]
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	col := func(name string) (int, error) {
		if name == "" {
			return -1, nil
		}
		i, ok := index[strings.ToLower(name)]
		if !ok {
			return -1, fmt.Errorf("column %q not found in header", name)
		}
		return i, nil
	}

	var cols [5]int
	for i, name := range []string{m.Date, m.Description, m.Amount, m.Debit, m.Credit} {
		if cols[i], err = col(name); err != nil {
			return nil, err
		}
	}
	dateCol, descCol, amountCol, debitCol, creditCol := cols[0], cols[1], cols[2], cols[3], cols[4]

	var rows []ledger.NewTransaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		field := func(i int) string {
			if i < 0 || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		date, err := time.ParseInLocation(layout, field(dateCol), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q: %w", line, field(dateCol), err)
		}

		var amount int64
		if amountCol >= 0 {
			amount, err = ParseAmount(field(amountCol))
		} else {
			var debit, credit int64
			if debit, err = ParseAmount(field(debitCol)); err == nil {
				credit, err = ParseAmount(field(creditCol))
			}
			amount = abs(credit) - abs(debit)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if amount == 0 {
			continue
		}

		row := ledger.NewTransaction{
			AccountID:   accountID,
			Type:        models.TransactionIncome,
			Amount:      amount,
			Description: field(descCol),
			Date:        date,
		}
		if amount < 0 {
			row.Type = models.TransactionExpense
			row.Amount = -amount
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ParseAmount converts a major-unit amount such as "-1,234.50", "$12" or
// "(3.20)" to minor units. Empty input is zero. Fractions of a cent are
// rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	if negative {
		minor = minor.Neg()
	}
	return minor.IntPart(), nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
