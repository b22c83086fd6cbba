package pdf

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/radwayousryyy/InkCrypt/internal/testutil"
)

const testIdentifier = "0b8f6c1e-5d0a-4c4e-9a57-3e0d6f3b8a21"

func embedFixtures(t *testing.T) map[string][]byte {
	t.Helper()
	info := map[string]string{"Title": "Contract", "Author": "Legal"}
	return map[string][]byte{
		"gofpdf": testutil.NewPDF(t, testutil.PDFOptions{Title: "Contract", Author: "Legal", Pages: []string{"Invoice 0001"}}),
		"xref table": testutil.NewRawPDF(t, testutil.RawPDFOptions{
			Xref: testutil.XrefTable, Info: info, Pages: []string{"BT (a) Tj ET"},
		}),
		"xref stream": testutil.NewRawPDF(t, testutil.RawPDFOptions{
			Xref: testutil.XrefStream, Info: info, Pages: []string{"BT (a) Tj ET"}, Compress: true,
		}),
		"no info dictionary": testutil.NewRawPDF(t, testutil.RawPDFOptions{
			Xref: testutil.XrefStream, Pages: []string{"BT (b) Tj ET"},
		}),
	}
}

func TestEmbedRoundTrip(t *testing.T) {
	for name, original := range embedFixtures(t) {
		t.Run(name, func(t *testing.T) {
			snapshot := bytes.Clone(original)

			before, err := Fingerprint(original, FailOnParseError)
			if err != nil {
				t.Fatalf("Fingerprint(original) error: %v", err)
			}

			artifact, err := Embed(original, testIdentifier)
			if err != nil {
				t.Fatalf("Embed() error: %v", err)
			}

			if !bytes.Equal(original, snapshot) {
				t.Fatal("Embed() modified its input")
			}
			if !bytes.HasPrefix(artifact, original) {
				t.Error("artifact does not start with the original bytes")
			}

			id, ok := ReadIdentifier(artifact)
			if !ok {
				t.Fatal("ReadIdentifier() found no identifier in the artifact")
			}
			if id != testIdentifier {
				t.Errorf("ReadIdentifier() = %q, want %q", id, testIdentifier)
			}

			after, err := Fingerprint(artifact, FailOnParseError)
			if err != nil {
				t.Fatalf("Fingerprint(artifact) error: %v", err)
			}
			if after != before {
				t.Errorf("embedding changed the fingerprint: %s != %s", after.Fingerprint, before.Fingerprint)
			}
		})
	}
}

func TestEmbedKeepsExistingInfo(t *testing.T) {
	original := testutil.NewRawPDF(t, testutil.RawPDFOptions{
		Info:  map[string]string{"Title": "Contract (v2)", "Author": "Legal"},
		Pages: []string{"BT (a) Tj ET"},
	})

	artifact, err := Embed(original, testIdentifier)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	doc, err := Parse(artifact)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	info := doc.reader.Trailer().Key("Info")
	if got := info.Key("Title").Text(); got != "Contract (v2)" {
		t.Errorf("Title = %q, want %q", got, "Contract (v2)")
	}
	if got := info.Key("Author").Text(); got != "Legal" {
		t.Errorf("Author = %q, want %q", got, "Legal")
	}
}

func TestEmbedReplacesPreviousIdentifier(t *testing.T) {
	original := testutil.NewPDF(t, testutil.PDFOptions{Pages: []string{"Invoice 0001"}})

	first, err := Embed(original, testIdentifier)
	if err != nil {
		t.Fatalf("first Embed() error: %v", err)
	}

	second := "5f2d7a4e-0c11-4b7f-8f3e-2a9c1d0e6b44"
	artifact, err := Embed(first, second)
	if err != nil {
		t.Fatalf("second Embed() error: %v", err)
	}

	id, ok := ReadIdentifier(artifact)
	if !ok || id != second {
		t.Errorf("ReadIdentifier() = %q, %v; want %q", id, ok, second)
	}
}

func TestReadIdentifierAbsent(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"plain document", testutil.NewPDF(t, testutil.PDFOptions{Pages: []string{"x"}})},
		{"not a pdf", []byte("definitely not a pdf")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id, ok := ReadIdentifier(tt.input); ok {
				t.Errorf("ReadIdentifier() = %q, want no identifier", id)
			}
		})
	}
}

func TestEmbedRejectsUnusableDocuments(t *testing.T) {
	plain := testutil.NewRawPDF(t, testutil.RawPDFOptions{Pages: []string{"BT (a) Tj ET"}})
	encrypted := bytes.Replace(plain, []byte("trailer\n<<"),
		[]byte("trailer\n<< /Encrypt << /Filter /Standard /V 1 /R 2 /P -4 >>"), 1)

	tests := []struct {
		name  string
		input []byte
	}{
		{"not a pdf", []byte("hello")},
		{"encrypted", encrypted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Embed(tt.input, testIdentifier)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Embed() error = %v, want *ParseError", err)
			}
		})
	}
}

func TestEscapeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Title", "Title"},
		{"My Key", "My#20Key"},
		{"a/b", "a#2Fb"},
		{"100%", "100#25"},
	}
	for _, tt := range tests {
		if got := escapeName(tt.in); got != tt.want {
			t.Errorf("escapeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLiteralString(t *testing.T) {
	if got := literalString(`a(b)\c`); got != `(a\(b\)\\c)` {
		t.Errorf("literalString() = %s", got)
	}
}

func TestLocateXrefWithTrailingPadding(t *testing.T) {
	fixtures := map[string][]byte{
		"xref table":  testutil.NewRawPDF(t, testutil.RawPDFOptions{Xref: testutil.XrefTable, Pages: []string{"BT (a) Tj ET"}}),
		"xref stream": testutil.NewRawPDF(t, testutil.RawPDFOptions{Xref: testutil.XrefStream, Pages: []string{"BT (a) Tj ET"}}),
	}

	for name, doc := range fixtures {
		t.Run(name, func(t *testing.T) {
			wantOffset, wantFlavour, err := locateXref(doc)
			if err != nil {
				t.Fatalf("locateXref() error: %v", err)
			}

			padded := append(bytes.Clone(doc), bytes.Repeat([]byte(" \n"), 2*startxrefWindow)...)
			offset, flavour, err := locateXref(padded)
			if err != nil {
				t.Fatalf("locateXref() with padding error: %v", err)
			}
			if offset != wantOffset || flavour != wantFlavour {
				t.Errorf("locateXref() = (%d, %s), want (%d, %s)", offset, flavour, wantOffset, wantFlavour)
			}
		})
	}

	if _, _, err := locateXref(bytes.Repeat([]byte("x"), 3*startxrefWindow)); !errors.Is(err, ErrNoXref) {
		t.Errorf("locateXref() without startxref error = %v, want ErrNoXref", err)
	}
}

func TestWriteXrefStreamOffsetWidth(t *testing.T) {
	tests := []struct {
		name       string
		infoOffset int64
		xrefOffset int64
		wantW      string
		wantWidth  int
	}{
		{"small file", 1000, 1100, "/W [1 4 2]", 4},
		{"last offset at the 4-byte limit", math.MaxUint32 - 100, math.MaxUint32, "/W [1 4 2]", 4},
		{"offsets beyond 4 GiB", 5 << 30, 5<<30 + 100, "/W [1 8 2]", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Embedding{root: objref{id: 1}, prevXref: 10}

			var buf bytes.Buffer
			e.writeXrefStream(&buf, 7, tt.infoOffset, tt.xrefOffset)
			out := buf.Bytes()

			if !bytes.Contains(out, []byte(tt.wantW)) {
				t.Fatalf("xref stream dictionary missing %s:\n%s", tt.wantW, out)
			}

			start := bytes.Index(out, []byte("stream\n")) + len("stream\n")
			entry := 1 + tt.wantWidth + 2
			data := out[start : start+2*entry]
			for i, want := range []int64{tt.infoOffset, tt.xrefOffset} {
				field := data[i*entry+1 : i*entry+1+tt.wantWidth]
				var got uint64
				for _, b := range field {
					got = got<<8 | uint64(b)
				}
				if got != uint64(want) {
					t.Errorf("entry %d offset = %d, want %d", i, got, want)
				}
			}
		})
	}
}
