package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"appraisal/internal/domain/auth"
)

// bulkHeader is the fixed header row of the bulk user import table.
var bulkHeader = []string{"name", "staffId", "email", "role", "managerId", "division", "region", "passwordHash"}

type ImportMode string

const (
	// ImportLenient skips rows missing required fields and reports them
	// in the result instead of dropping them silently.
	ImportLenient ImportMode = "lenient"
	ImportStrict  ImportMode = "strict"
)

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Issues   []string `json:"issues,omitempty"`
}

var ErrBadHeader = errors.New("bulk import header row does not match the expected columns")

// ParseBulkUsers reads the CSV table into user inputs. Quoted fields are
// handled by the parser; rows missing name, staffId or role are skipped in
// lenient mode and abort the parse in strict mode.
func ParseBulkUsers(r io.Reader, mode ImportMode) ([]CreateUserInput, *ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header row: %w", err)
	}
	if !headerMatches(header) {
		return nil, nil, ErrBadHeader
	}

	result := &ImportResult{}
	var inputs []CreateUserInput
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			if mode == ImportStrict {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			result.Skipped++
			result.Issues = append(result.Issues, fmt.Sprintf("line %d: malformed row", line))
			continue
		}

		row := padRow(record, len(bulkHeader))
		name, staffID, role := strings.TrimSpace(row[0]), strings.TrimSpace(row[1]), strings.TrimSpace(row[3])
		if name == "" || staffID == "" || role == "" {
			if mode == ImportStrict {
				return nil, nil, fmt.Errorf("line %d: name, staffId and role are required", line)
			}
			result.Skipped++
			result.Issues = append(result.Issues, fmt.Sprintf("line %d: missing required field", line))
			continue
		}
		if !auth.ValidRole(role) {
			if mode == ImportStrict {
				return nil, nil, fmt.Errorf("line %d: unknown role %q", line, role)
			}
			result.Skipped++
			result.Issues = append(result.Issues, fmt.Sprintf("line %d: unknown role %q", line, role))
			continue
		}

		input := CreateUserInput{
			Name:      name,
			StaffID:   staffID,
			Email:     strings.TrimSpace(row[2]),
			Role:      role,
			ManagerID: strings.TrimSpace(row[4]),
			Division:  strings.TrimSpace(row[5]),
			Region:    strings.TrimSpace(row[6]),
		}
		// The column holds either a bcrypt digest from an exported
		// roster or an initial plaintext password. Re-hashing a digest
		// would lock the account out of its old password.
		if secret := strings.TrimSpace(row[7]); auth.IsPasswordHash(secret) {
			input.PasswordHash = secret
		} else {
			input.Password = secret
		}
		inputs = append(inputs, input)
	}
	return inputs, result, nil
}

// BulkImport parses the table and provisions one user per valid row.
func (s *Service) BulkImport(ctx context.Context, r io.Reader, mode ImportMode) (*ImportResult, error) {
	inputs, result, err := ParseBulkUsers(r, mode)
	if err != nil {
		return nil, err
	}
	for _, input := range inputs {
		if _, err := s.CreateUser(ctx, input); err != nil {
			if mode == ImportStrict {
				return nil, fmt.Errorf("importing %s: %w", input.StaffID, err)
			}
			result.Skipped++
			result.Issues = append(result.Issues, fmt.Sprintf("%s: %v", input.StaffID, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(bulkHeader) {
		return false
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), bulkHeader[i]) {
			return false
		}
	}
	return true
}

func padRow(record []string, width int) []string {
	if len(record) >= width {
		return record[:width]
	}
	padded := make([]string, width)
	copy(padded, record)
	return padded
}
