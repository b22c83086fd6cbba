package pdf

import (
	"bytes"
	"fmt"
	"io"

	pdflib "github.com/digitorus/pdf"

	"github.com/radwayousryyy/InkCrypt/internal/crypto"
)

// Policy decides what Digest does when the input cannot be normalized
type Policy int

const (
	// FallbackToRaw digests the raw input bytes when normalization fails.
	// Every input produces a digest; unparseable documents are fingerprinted as opaque bytes.
	FallbackToRaw Policy = iota

	// FailOnParseError returns the normalization error to the caller
	FailOnParseError
)

// Digest is the fingerprint of a document
type Digest struct {
	// Fingerprint is the hex SHA-256 of the canonical bytes (or of the raw input on fallback)
	Fingerprint string

	// FellBack is true when the raw input was digested because normalization failed
	FellBack bool
}

// Normalize returns the canonical content of the document: for each page in order
// a separator line followed by the page's decoded content streams.
//
// The information dictionary, XMP metadata, trailer IDs, object numbering and
// cross-reference layout do not contribute, so re-saving a document or editing its
// metadata leaves the result unchanged.
func (d *Document) Normalize() (canonical []byte, err error) {
	defer recoverParse("normalize", &err)

	n := d.reader.NumPage()
	if n < 1 {
		return nil, &ParseError{Op: "normalize", Err: ErrNoPages}
	}

	var buf bytes.Buffer
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&buf, "%%%%InkCrypt-Page %d\n", i)

		page := d.reader.Page(i)
		if page.V.IsNull() {
			return nil, &ParseError{Op: "normalize", Err: fmt.Errorf("page %d not found", i)}
		}
		if err := writeContents(&buf, page.V.Key("Contents")); err != nil {
			return nil, &ParseError{Op: "normalize", Err: fmt.Errorf("page %d: %w", i, err)}
		}
	}
	return buf.Bytes(), nil
}

// writeContents appends the decoded content of a /Contents value (a stream or an array of streams)
func writeContents(w io.Writer, contents pdflib.Value) error {
	switch contents.Kind() {
	case pdflib.Null:
		// a page with no content is blank
		return nil
	case pdflib.Stream:
		return copyStream(w, contents)
	case pdflib.Array:
		for i := 0; i < contents.Len(); i++ {
			part := contents.Index(i)
			if part.Kind() != pdflib.Stream {
				return fmt.Errorf("contents[%d] is not a stream", i)
			}
			if err := copyStream(w, part); err != nil {
				return fmt.Errorf("contents[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unexpected /Contents type %v", contents.Kind())
	}
}

func copyStream(w io.Writer, stream pdflib.Value) error {
	rc := stream.Reader()
	defer rc.Close()

	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("failed to decode content stream: %w", err)
	}
	return nil
}

// Normalize parses data and returns its canonical content
func Normalize(data []byte) ([]byte, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.Normalize()
}

// Fingerprint computes the document fingerprint, applying policy when normalization fails.
// With FallbackToRaw the returned error is always nil.
func Fingerprint(data []byte, policy Policy) (Digest, error) {
	canonical, err := Normalize(data)
	if err == nil {
		return Digest{Fingerprint: crypto.Fingerprint(canonical)}, nil
	}
	if policy == FailOnParseError {
		return Digest{}, err
	}
	return Digest{Fingerprint: crypto.Fingerprint(data), FellBack: true}, nil
}
