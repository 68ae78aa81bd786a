package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"invoiceparser/pkg/models"
)

var testMethods = []string{"method_a", "method_b"}

func writeDoc(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("failed to write test document: %v", err)
	}
	return path
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "invoice.pdf")
	c := New(filepath.Join(dir, "cache"), testMethods)

	invoice := &models.Invoice{
		InvoiceNumber: models.String("INV-100"),
		TotalAmount:   models.Float(512.50),
		Items:         []models.LineItem{},
		TaxDetails:    []models.TaxDetail{},
	}
	if err := c.Put(doc, "method_a", invoice); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := c.Get(doc, "method_a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.InvoiceNumber == nil || *got.InvoiceNumber != "INV-100" {
		t.Errorf("expected invoice_number INV-100, got %v", got.InvoiceNumber)
	}
	if got.TotalAmount == nil || *got.TotalAmount != 512.50 {
		t.Errorf("expected total_amount 512.50, got %v", got.TotalAmount)
	}
}

func TestCacheMissWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "invoice.pdf")
	c := New(filepath.Join(dir, "cache"), testMethods)

	_, ok, err := c.Get(doc, "method_a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected cache miss for absent entry")
	}
}

func TestCacheKeysAreMethodScoped(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "invoice.pdf")
	c := New(filepath.Join(dir, "cache"), testMethods)

	if err := c.Put(doc, "method_a", &models.Invoice{InvoiceNumber: models.String("A")}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, ok, err := c.Get(doc, "method_b")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("method_b must not see method_a's entry")
	}
}

func TestCacheStaleAfterDocumentEdit(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "invoice.pdf")
	c := New(filepath.Join(dir, "cache"), testMethods)

	if err := c.Put(doc, "method_a", &models.Invoice{InvoiceNumber: models.String("OLD")}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Simulate an in-place edit by pushing the document's mtime past the entry.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(doc, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	_, ok, err := c.Get(doc, "method_a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected stale entry to be reported as a miss")
	}
}

func TestCacheInvalidateOneDocument(t *testing.T) {
	dir := t.TempDir()
	docA := writeDoc(t, dir, "a.pdf")
	docB := writeDoc(t, dir, "b.pdf")
	c := New(filepath.Join(dir, "cache"), testMethods)

	for _, method := range testMethods {
		if err := c.Put(docA, method, &models.Invoice{}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if err := c.Put(docB, "method_a", &models.Invoice{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := c.Invalidate(docA); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	for _, method := range testMethods {
		if _, ok, _ := c.Get(docA, method); ok {
			t.Errorf("expected %s entry for docA to be gone", method)
		}
	}
	if _, ok, _ := c.Get(docB, "method_a"); !ok {
		t.Error("docB's entry must survive docA's invalidation")
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "invoice.pdf")
	c := New(filepath.Join(dir, "cache"), testMethods)

	if err := c.Put(doc, "method_a", &models.Invoice{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.InvalidateAll(); err != nil {
		t.Fatalf("InvalidateAll failed: %v", err)
	}
	if _, ok, _ := c.Get(doc, "method_a"); ok {
		t.Error("expected empty cache after InvalidateAll")
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "invoice.pdf")
	c := New(filepath.Join(dir, "cache"), testMethods)

	if err := c.Put(doc, "method_a", &models.Invoice{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := os.WriteFile(c.entryPath(doc, "method_a"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("failed to corrupt entry: %v", err)
	}

	_, ok, err := c.Get(doc, "method_a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected corrupt entry to be reported as a miss")
	}
}
