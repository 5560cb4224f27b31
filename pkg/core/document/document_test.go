package document

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	d, err := New("proj-1", "site-plan.pdf", "application/pdf", 52_000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if d.ID == "" {
		t.Error("Expected a generated ID")
	}
	if !strings.HasPrefix(d.ObjectKey, "projects/proj-1/documents/") {
		t.Errorf("Expected object key under the project prefix, got %s", d.ObjectKey)
	}
	if !strings.HasSuffix(d.ObjectKey, "/site-plan.pdf") {
		t.Errorf("Expected object key to end with the file name, got %s", d.ObjectKey)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Expected fresh document to validate, got %v", err)
	}
}

func TestNewRejections(t *testing.T) {
	if _, err := New("", "plan.pdf", "application/pdf", 10); err == nil {
		t.Error("Expected error for missing project")
	}
	if _, err := New("proj-1", "   ", "application/pdf", 10); err == nil {
		t.Error("Expected error for blank file name")
	}
	if _, err := New("proj-1", "a/b.pdf", "application/pdf", 10); err == nil {
		t.Error("Expected error for slash in file name")
	}
	if _, err := New("proj-1", "plan.pdf", "application/pdf", -1); err == nil {
		t.Error("Expected error for negative size")
	}
}

func TestParse(t *testing.T) {
	d, err := New("proj-1", "budget.xlsx", "application/vnd.ms-excel", 9_100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := d.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.ID != d.ID || got.ObjectKey != d.ObjectKey {
		t.Errorf("Expected round-tripped record, got %+v", got)
	}

	if _, err := Parse([]byte(`{"id":"x"}`)); err == nil {
		t.Error("Expected error for record without project")
	}
}

func TestShelfByProjectSortsByUploadOrder(t *testing.T) {
	shelf := NewShelf()

	first, _ := New("proj-1", "first.pdf", "application/pdf", 1)
	second, _ := New("proj-1", "second.pdf", "application/pdf", 2)
	other, _ := New("proj-2", "other.pdf", "application/pdf", 3)
	for _, d := range []*Document{second, other, first} {
		if err := shelf.Add(d); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	docs := shelf.ByProject("proj-1")
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	// ULIDs are time-ordered, so first comes back first.
	if docs[0].Name != "first.pdf" || docs[1].Name != "second.pdf" {
		t.Errorf("Expected upload order, got %s then %s", docs[0].Name, docs[1].Name)
	}
}

func TestShelfDeleteIsIdempotent(t *testing.T) {
	shelf := NewShelf()
	d, _ := New("proj-1", "plan.pdf", "application/pdf", 1)
	if err := shelf.Add(d); err != nil {
		t.Fatalf("Add: %v", err)
	}

	shelf.Delete(d.ID)
	shelf.Delete(d.ID)
	if _, err := shelf.Get(d.ID); err == nil {
		t.Error("Expected document to be gone")
	}
}
