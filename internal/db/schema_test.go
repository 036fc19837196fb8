package db_test

import (
	"strings"
	"testing"

	"tutorhub/marketplace-service/internal/db"
)

func TestSchemaDeclaresAllTables(t *testing.T) {
	ddl := db.Schema()
	for _, table := range []string{"tutors", "job_postings", "applications", "commission_invoices", "reviews", "notifications"} {
		if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Errorf("schema is missing table %s", table)
		}
	}
}

// An invoice per job is enforced by the database, not just the service.
func TestSchemaInvoiceUniquePerJob(t *testing.T) {
	if !strings.Contains(db.Schema(), "job_id       BIGINT NOT NULL UNIQUE REFERENCES job_postings(id)") {
		t.Error("commission_invoices.job_id must be UNIQUE")
	}
}
