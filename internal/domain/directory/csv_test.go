package directory

import (
	"strings"
	"testing"
)

const bulkHeaderRow = "name,staffId,email,role,managerId,division,region,passwordHash\n"

func TestParseBulkUsers(t *testing.T) {
	data := bulkHeaderRow +
		"Ama Mensah,TVT100,ama@example.com,Staff Member,,Operations,Greater Accra,pw1\n" +
		"\"Owusu, Kofi\",TVT101,kofi@example.com,Unit Head,,Operations,Ashanti,pw2\n"

	inputs, result, err := ParseBulkUsers(strings.NewReader(data), ImportLenient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(inputs))
	}
	if inputs[1].Name != "Owusu, Kofi" {
		t.Fatalf("quoted field not parsed: %q", inputs[1].Name)
	}
	if result.Skipped != 0 {
		t.Fatalf("expected no skips, got %d", result.Skipped)
	}
}

func TestParseBulkUsersKeepsExistingHashes(t *testing.T) {
	const digest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	data := bulkHeaderRow +
		"Ama Mensah,TVT100,ama@example.com,Staff Member,,Operations,Greater Accra," + digest + "\n" +
		"Kofi Owusu,TVT101,kofi@example.com,Staff Member,,Operations,Ashanti,Welcome123!\n"

	inputs, _, err := ParseBulkUsers(strings.NewReader(data), ImportStrict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(inputs))
	}
	if inputs[0].PasswordHash != digest || inputs[0].Password != "" {
		t.Fatalf("bcrypt digest should pass through verbatim, got %+v", inputs[0])
	}
	if inputs[1].Password != "Welcome123!" || inputs[1].PasswordHash != "" {
		t.Fatalf("plaintext password should be kept for hashing, got %+v", inputs[1])
	}
}

func TestParseBulkUsersLenientSkipsIncompleteRows(t *testing.T) {
	data := bulkHeaderRow +
		",TVT100,a@example.com,Staff Member,,,,pw\n" +
		"Kwame Boateng,,b@example.com,Staff Member,,,,pw\n" +
		"Abena Owusu,TVT102,c@example.com,,,,,pw\n" +
		"Yaw Darko,TVT103,d@example.com,Staff Member,,,,pw\n"

	inputs, result, err := ParseBulkUsers(strings.NewReader(data), ImportLenient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 1 || inputs[0].StaffID != "TVT103" {
		t.Fatalf("expected only the complete row, got %+v", inputs)
	}
	if result.Skipped != 3 {
		t.Fatalf("expected 3 skips, got %d", result.Skipped)
	}
	if len(result.Issues) != 3 {
		t.Fatalf("expected each skip reported, got %v", result.Issues)
	}
}

func TestParseBulkUsersStrictFailsFast(t *testing.T) {
	data := bulkHeaderRow + ",TVT100,a@example.com,Staff Member,,,,pw\n"
	if _, _, err := ParseBulkUsers(strings.NewReader(data), ImportStrict); err == nil {
		t.Fatal("expected strict mode to fail on incomplete row")
	}
}

func TestParseBulkUsersRejectsUnknownRole(t *testing.T) {
	data := bulkHeaderRow + "Ama Mensah,TVT100,a@example.com,Wizard,,,,pw\n"
	if _, _, err := ParseBulkUsers(strings.NewReader(data), ImportStrict); err == nil {
		t.Fatal("expected strict mode to reject unknown role")
	}

	inputs, result, err := ParseBulkUsers(strings.NewReader(data), ImportLenient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inputs) != 0 || result.Skipped != 1 {
		t.Fatalf("expected lenient skip, got inputs=%v skipped=%d", inputs, result.Skipped)
	}
}

func TestParseBulkUsersBadHeader(t *testing.T) {
	data := "fullName,staffId\nAma,TVT1\n"
	if _, _, err := ParseBulkUsers(strings.NewReader(data), ImportLenient); err == nil {
		t.Fatal("expected header mismatch error")
	}
}
