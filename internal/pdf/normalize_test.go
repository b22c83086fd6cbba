package pdf

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/radwayousryyy/InkCrypt/internal/crypto"
	"github.com/radwayousryyy/InkCrypt/internal/testutil"
)

func TestNormalizeIgnoresMetadata(t *testing.T) {
	a := testutil.NewPDF(t, testutil.PDFOptions{
		Title:        "Quarterly report",
		Author:       "Alice",
		CreationDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		Pages:        []string{"Invoice 0001", "Page two"},
	})
	b := testutil.NewPDF(t, testutil.PDFOptions{
		Title:        "Something else entirely",
		Author:       "Bob",
		Subject:      "added subject",
		CreationDate: time.Date(2025, 9, 9, 9, 9, 9, 0, time.UTC),
		Pages:        []string{"Invoice 0001", "Page two"},
	})

	if bytes.Equal(a, b) {
		t.Fatal("test documents should differ byte-for-byte")
	}

	na, err := Normalize(a)
	if err != nil {
		t.Fatalf("Normalize(a) error: %v", err)
	}
	nb, err := Normalize(b)
	if err != nil {
		t.Fatalf("Normalize(b) error: %v", err)
	}
	if !bytes.Equal(na, nb) {
		t.Errorf("canonical content differs for documents with identical pages")
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	doc := testutil.NewPDF(t, testutil.PDFOptions{Pages: []string{"Invoice 0001"}})

	first, err := Fingerprint(doc, FailOnParseError)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := Fingerprint(doc, FailOnParseError)
		if err != nil {
			t.Fatalf("Fingerprint() error: %v", err)
		}
		if again != first {
			t.Fatalf("Fingerprint() = %+v, want %+v", again, first)
		}
	}
}

func TestNormalizeDetectsContentChange(t *testing.T) {
	doc := testutil.NewPDF(t, testutil.PDFOptions{Pages: []string{"Invoice 0001"}})
	tampered := testutil.ReplaceOnce(t, doc, "Invoice 0001", "Invoice 0002")

	original, err := Fingerprint(doc, FailOnParseError)
	if err != nil {
		t.Fatalf("Fingerprint(original) error: %v", err)
	}
	changed, err := Fingerprint(tampered, FailOnParseError)
	if err != nil {
		t.Fatalf("Fingerprint(tampered) error: %v", err)
	}
	if original.Fingerprint == changed.Fingerprint {
		t.Error("fingerprint did not change after page content was modified")
	}
}

func TestNormalizeContentLayouts(t *testing.T) {
	pages := []string{"BT (first page) Tj ET", "BT (second page) Tj ET"}
	want := "%%InkCrypt-Page 1\nBT (first page) Tj ET%%InkCrypt-Page 2\nBT (second page) Tj ET"

	tests := []struct {
		name string
		opts testutil.RawPDFOptions
	}{
		{
			name: "xref table, plain streams",
			opts: testutil.RawPDFOptions{Xref: testutil.XrefTable, Pages: pages},
		},
		{
			name: "xref stream, compressed streams",
			opts: testutil.RawPDFOptions{Xref: testutil.XrefStream, Pages: pages, Compress: true},
		},
		{
			name: "contents arrays",
			opts: testutil.RawPDFOptions{Xref: testutil.XrefTable, Pages: pages, SplitContents: true},
		},
		{
			name: "compressed contents arrays with metadata",
			opts: testutil.RawPDFOptions{
				Xref:          testutil.XrefStream,
				Pages:         pages,
				SplitContents: true,
				Compress:      true,
				Info:          map[string]string{"Title": "ignored", "Producer": "ignored too"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(testutil.NewRawPDF(t, tt.opts))
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			if string(got) != want {
				t.Errorf("Normalize() = %q, want %q", got, want)
			}
		})
	}
}

func TestFingerprintPolicies(t *testing.T) {
	// the last two parse as PDFs but their page content cannot be extracted
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"empty input", []byte{}, nil},
		{"not a pdf", []byte("hello, world"), nil},
		{"truncated pdf", []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"), nil},
		{"empty page tree", testutil.NewRawPDF(t, testutil.RawPDFOptions{EmptyPageTree: true}), ErrNoPages},
		{"contents is not a stream", testutil.NewRawPDF(t, testutil.RawPDFOptions{RawContents: "7"}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := Fingerprint(tt.input, FallbackToRaw)
			if err != nil {
				t.Fatalf("Fingerprint(FallbackToRaw) error: %v", err)
			}
			if !digest.FellBack {
				t.Error("expected FellBack to be true")
			}
			if digest.Fingerprint != crypto.Fingerprint(tt.input) {
				t.Errorf("fallback fingerprint = %s, want SHA-256 of the raw input", digest.Fingerprint)
			}

			_, err = Fingerprint(tt.input, FailOnParseError)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Fingerprint(FailOnParseError) error = %v, want *ParseError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Fingerprint(FailOnParseError) error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnnormalizableDocumentsStillParse(t *testing.T) {
	tests := map[string][]byte{
		"empty page tree":          testutil.NewRawPDF(t, testutil.RawPDFOptions{EmptyPageTree: true}),
		"contents is not a stream": testutil.NewRawPDF(t, testutil.RawPDFOptions{RawContents: "7"}),
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			parsed, err := Parse(doc)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if _, err := parsed.Normalize(); err == nil {
				t.Fatal("Normalize() expected error, got nil")
			}
		})
	}
}

func TestFingerprintDoesNotFallBackForValidDocuments(t *testing.T) {
	doc := testutil.NewPDF(t, testutil.PDFOptions{Pages: []string{"hello"}})

	digest, err := Fingerprint(doc, FallbackToRaw)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	if digest.FellBack {
		t.Error("valid document should not fall back to raw bytes")
	}
	if digest.Fingerprint == crypto.Fingerprint(doc) {
		t.Error("fingerprint of a valid document should be computed over its canonical content")
	}
}
