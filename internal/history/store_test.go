package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Centro-Juridico-Internacional/campanero/internal/campaign"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)

	entry, err := s.Record(2, "CHECK 5 - CLASE 2 - GRUPO 1 - ENERO - 13 - 3:00 PM", campaign.SendResult{
		Whatsapp: campaign.WhatsappStats{Total: 10, Exitosos: 9, Fallidos: 1},
		Correos:  campaign.CorreoStats{OK: 8},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if entry.ID == "" || entry.EnviadaEn.IsZero() {
		t.Errorf("entry not fully populated: %+v", entry)
	}

	entries, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.ID != entry.ID || got.NumMensajes != 2 {
		t.Errorf("stored entry = %+v", got)
	}
	if got.Resultado.Whatsapp.Exitosos != 9 || got.Resultado.Correos.OK != 8 {
		t.Errorf("stored result = %+v", got.Resultado)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)

	for i, asunto := range []string{"primero", "segundo", "tercero"} {
		if _, err := s.Record(i+1, asunto, campaign.SendResult{}); err != nil {
			t.Fatalf("Record: %v", err)
		}
		// Distinct timestamps keep the key ordering deterministic.
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := s.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Asunto != "tercero" || entries[1].Asunto != "segundo" {
		t.Errorf("order = %q, %q", entries[0].Asunto, entries[1].Asunto)
	}
}

func TestLen(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.Record(1, "x", campaign.SendResult{}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	n, err := s.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 5 {
		t.Errorf("Len = %d, want 5", n)
	}
}

func TestListEmpty(t *testing.T) {
	s := testStore(t)
	entries, err := s.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Record(1, "persistente", campaign.SendResult{}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	entries, err := s2.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Asunto != "persistente" {
		t.Errorf("entries after reopen = %+v", entries)
	}
}
