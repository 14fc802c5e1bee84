package interfaces

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	reconciliation "marketplace-recon/internal/reconciliation/domain"
)

// pageContent inflates every content stream of a PDF produced by BuildReportPDF.
func pageContent(t *testing.T, doc []byte) []byte {
	t.Helper()
	var content []byte
	rest := doc
	for {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			return content
		}
		rest = rest[start+len("stream\n"):]
		end := bytes.Index(rest, []byte("\nendstream"))
		if end < 0 {
			t.Fatalf("unterminated stream")
		}
		reader, err := zlib.NewReader(bytes.NewReader(rest[:end]))
		if err == nil {
			raw, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("inflate stream: %v", err)
			}
			content = append(content, raw...)
		}
		rest = rest[end+len("\nendstream"):]
	}
}

func TestBuildReportPDF_EncodesAccentedText(t *testing.T) {
	report := &reconciliation.Report{
		ShopID: 7,
		Rows: []reconciliation.Row{{
			ExpectedRecord: reconciliation.ExpectedRecord{ShopID: 7, OrderID: "O1", ItemName: "Camiseta Algodão", UnitPrice: 50, Quantity: 1},
			Status:         reconciliation.StatusPending,
		}},
	}
	report.Summary = reconciliation.Summarize(report.Rows)

	doc, err := BuildReportPDF(report, ExportMeta{ShopName: "Loja São João", Currency: "BRL", FromDay: "2026-03-01", ToDay: "2026-03-01"})
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("pdf body missing header")
	}

	content := pageContent(t, doc)
	if !bytes.Contains(content, []byte("Camiseta Algod\xe3o")) {
		t.Fatalf("item name not cp1252 encoded")
	}
	if !bytes.Contains(content, []byte("Loja S\xe3o Jo\xe3o")) {
		t.Fatalf("shop name not cp1252 encoded")
	}
	if bytes.Contains(content, []byte("Algod\xc3\xa3o")) {
		t.Fatalf("raw utf-8 leaked into page content")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Algodão", 10); got != "Algodão" {
		t.Fatalf("short value changed: %q", got)
	}
	if got := truncate("Camiseta Algodão", 8); got != "Camiset~" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
