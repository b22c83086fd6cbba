// Package pdf reads and updates the parts of a PDF that InkCrypt depends on:
// the page content streams (hashed to fingerprint a document), the document
// information dictionary (where the identifier is embedded) and the trailer.
//
// Parsing uses github.com/digitorus/pdf. That parser panics on some malformed
// input, so every entry point recovers and returns a *ParseError instead.
package pdf

import (
	"bytes"

	pdflib "github.com/digitorus/pdf"
)

// Document is a parsed PDF held in memory. The input bytes are never modified.
type Document struct {
	data   []byte
	reader *pdflib.Reader
}

// Parse opens data as a PDF
func Parse(data []byte) (doc *Document, err error) {
	defer recoverParse("parse", &err)

	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Op: "parse", Err: err}
	}
	return &Document{data: data, reader: r}, nil
}

// NumPages returns the number of pages in the page tree
func (d *Document) NumPages() (n int, err error) {
	defer recoverParse("page count", &err)
	return d.reader.NumPage(), nil
}

// Encrypted reports whether the trailer references an encryption dictionary
func (d *Document) Encrypted() (encrypted bool, err error) {
	defer recoverParse("trailer", &err)
	return !d.reader.Trailer().Key("Encrypt").IsNull(), nil
}

// Bytes returns the document's original bytes
func (d *Document) Bytes() []byte { return d.data }
