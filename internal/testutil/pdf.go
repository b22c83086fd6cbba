// Package testutil builds PDF fixtures for tests.
package testutil

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions describes a generated document
type PDFOptions struct {
	Title        string
	Author       string
	Subject      string
	CreationDate time.Time

	// Pages holds the text written on each page. At least one page is always produced.
	Pages []string
}

// NewPDF renders a document with gofpdf. Compression is disabled so that page text
// appears verbatim in the content streams, which lets tests alter a single byte.
func NewPDF(t testing.TB, opts PDFOptions) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if opts.Subject != "" {
		pdf.SetSubject(opts.Subject, true)
	}
	creationDate := opts.CreationDate
	if creationDate.IsZero() {
		creationDate = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	pdf.SetCreationDate(creationDate)

	pages := opts.Pages
	if len(pages) == 0 {
		pages = []string{""}
	}
	for _, text := range pages {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(40, 10, text)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("failed to render PDF: %v", err)
	}
	return buf.Bytes()
}

// XrefKind selects the cross-reference format of a hand-built document
type XrefKind int

const (
	XrefTable XrefKind = iota
	XrefStream
)

// RawPDFOptions describes a hand-assembled document
type RawPDFOptions struct {
	Xref XrefKind

	// Info entries written as literal strings, in key order
	Info map[string]string

	// Pages holds the content stream text of each page
	Pages []string

	// SplitContents writes each page's content as an array of two streams
	SplitContents bool

	// Compress FlateDecodes the content streams
	Compress bool

	// RawContents, when set, is written verbatim as every page's /Contents value
	// in place of a content stream (for example "7" to produce an integer).
	RawContents string

	// EmptyPageTree writes a page tree with no kids; Pages is ignored
	EmptyPageTree bool
}

// NewRawPDF assembles a minimal PDF by hand. Unlike NewPDF it can produce
// cross-reference streams, compressed content and /Contents arrays.
func NewRawPDF(t testing.TB, opts RawPDFOptions) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int // offsets[i] is the offset of object i+1

	begin := func() int {
		offsets = append(offsets, buf.Len())
		id := len(offsets)
		fmt.Fprintf(&buf, "%d 0 obj\n", id)
		return id
	}
	end := func() { buf.WriteString("\nendobj\n") }

	stream := func(content string) int {
		data := []byte(content)
		filter := ""
		if opts.Compress {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			if _, err := zw.Write(data); err != nil {
				t.Fatalf("compress content: %v", err)
			}
			if err := zw.Close(); err != nil {
				t.Fatalf("compress content: %v", err)
			}
			data = z.Bytes()
			filter = " /Filter /FlateDecode"
		}
		id := begin()
		fmt.Fprintf(&buf, "<< /Length %d%s >>\nstream\n", len(data), filter)
		buf.Write(data)
		buf.WriteString("\nendstream")
		end()
		return id
	}

	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	pages := opts.Pages
	if len(pages) == 0 {
		pages = []string{""}
	}
	if opts.EmptyPageTree {
		pages = nil
	}

	// objects 1 and 2 are the catalog and page tree; pages follow
	catalog := begin()
	buf.WriteString("<< /Type /Catalog /Pages 2 0 R >>")
	end()

	pageTreeOffset := len(offsets)
	offsets = append(offsets, 0) // reserved, written after the pages
	pageTree := len(offsets)

	var kids []string
	for _, text := range pages {
		var contents string
		if opts.RawContents != "" {
			contents = opts.RawContents
		} else if opts.SplitContents {
			half := len(text) / 2
			a := stream(text[:half])
			b := stream(text[half:])
			contents = fmt.Sprintf("[%d 0 R %d 0 R]", a, b)
		} else {
			contents = fmt.Sprintf("%d 0 R", stream(text))
		}
		page := begin()
		fmt.Fprintf(&buf, "<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Contents %s >>", pageTree, contents)
		end()
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	offsets[pageTreeOffset] = buf.Len()
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>", pageTree, strings.Join(kids, " "), len(kids))
	end()

	info := 0
	if len(opts.Info) > 0 {
		keys := make([]string, 0, len(opts.Info))
		for k := range opts.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		info = begin()
		buf.WriteString("<<")
		for _, k := range keys {
			fmt.Fprintf(&buf, " /%s (%s)", k, opts.Info[k])
		}
		buf.WriteString(" >>")
		end()
	}

	trailerRefs := fmt.Sprintf("/Root %d 0 R", catalog)
	if info != 0 {
		trailerRefs += fmt.Sprintf(" /Info %d 0 R", info)
	}

	xrefOffset := buf.Len()
	switch opts.Xref {
	case XrefStream:
		xrefID := len(offsets) + 1
		offsets = append(offsets, xrefOffset)

		var entries []byte
		entries = append(entries, 0)
		entries = binary.BigEndian.AppendUint32(entries, 0)
		entries = binary.BigEndian.AppendUint16(entries, 0xFFFF)
		for _, off := range offsets {
			entries = append(entries, 1)
			entries = binary.BigEndian.AppendUint32(entries, uint32(off))
			entries = binary.BigEndian.AppendUint16(entries, 0)
		}

		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] %s /ID [<0102> <0102>] /Length %d >>\nstream\n",
			xrefID, xrefID+1, trailerRefs, len(entries))
		buf.Write(entries)
		buf.WriteString("\nendstream\nendobj\n")

	default:
		fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
		for _, off := range offsets {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		}
		fmt.Fprintf(&buf, "trailer\n<< /Size %d %s /ID [<0102> <0102>] >>\n", len(offsets)+1, trailerRefs)
	}

	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

// ReplaceOnce returns a copy of data with the first occurrence of old replaced by new.
// old and new must have the same length so that cross-reference offsets stay valid.
func ReplaceOnce(t testing.TB, data []byte, old, new string) []byte {
	t.Helper()

	if len(old) != len(new) {
		t.Fatalf("ReplaceOnce: %q and %q differ in length", old, new)
	}
	if !bytes.Contains(data, []byte(old)) {
		t.Fatalf("ReplaceOnce: %q not found", old)
	}
	return bytes.Replace(data, []byte(old), []byte(new), 1)
}
