package services

import (
	"context"
	"strings"
	"testing"

	"backend/internal/domain"
	"backend/internal/domain/models"
)

func TestDocsServiceGenerateETicket(t *testing.T) {
	loader := func(_ context.Context, id int64) (models.Ticket, error) {
		tk := scatteredTicket()
		tk.ID = id
		return tk, nil
	}

	svc := DocsService{Loader: loader}

	pdf, filename, err := svc.GenerateETicket(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("GenerateETicket returned error: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("GenerateETicket returned empty data")
	}
	if !strings.HasPrefix(filename, "ETICKET_4528176395") || !strings.HasSuffix(filename, ".pdf") {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceChecksOwnership(t *testing.T) {
	loader := func(_ context.Context, id int64) (models.Ticket, error) {
		tk := scatteredTicket()
		tk.ID = id
		tk.UserID = 999
		return tk, nil
	}

	svc := DocsService{Loader: loader}
	if _, _, err := svc.GenerateETicket(context.Background(), 1, 42); !domain.IsNotFound(err) {
		t.Fatalf("foreign ticket should look not found, got %v", err)
	}
}
