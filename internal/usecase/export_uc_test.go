//go:build !integration

package usecase_test

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"trenbolt-bot/internal/usecase"
)

func TestExportUseCase_ExportUsersCSV(t *testing.T) {
	ctx := context.Background()

	users := NewMockUserRepo()
	usage := NewMockUsageRepo()
	userUC := usecase.NewUserUseCase(users, usage, NewMockTxManager(), newTestLogger())

	if _, err := userUC.RegisterOrFetch(ctx, 100, "bob", "Bob", "Builder"); err != nil {
		t.Fatalf("RegisterOrFetch failed: %v", err)
	}
	if err := userUC.SetPremium(ctx, 100, true); err != nil {
		t.Fatalf("SetPremium failed: %v", err)
	}

	uc := usecase.NewExportUseCase(users, newTestLogger())
	data, err := uc.ExportUsersCSV(ctx)
	if err != nil {
		t.Fatalf("ExportUsersCSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}

	wantHeader := []string{"User ID", "Username", "First Name", "Last Name", "Premium", "Usage Count", "Created At"}
	if diff := cmp.Diff(wantHeader, records[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	row := records[1]
	if row[0] != "100" || row[1] != "bob" || row[4] != "Yes" || row[5] != "0" {
		t.Errorf("unexpected row: %v", row)
	}
}
