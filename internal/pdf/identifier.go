package pdf

import (
	pdflib "github.com/digitorus/pdf"
)

// IdentifierKey is the document information dictionary key that carries the InkCrypt identifier
const IdentifierKey = "InkCryptUUID"

// Identifier returns the value stored under IdentifierKey in the document information
// dictionary. ok is false when the dictionary or the key is absent.
func (d *Document) Identifier() (id string, ok bool, err error) {
	defer recoverParse("read identifier", &err)

	info := d.reader.Trailer().Key("Info")
	if info.Kind() != pdflib.Dict {
		return "", false, nil
	}

	v := info.Key(IdentifierKey)
	switch v.Kind() {
	case pdflib.String:
		return v.Text(), true, nil
	case pdflib.Name:
		return v.Name(), true, nil
	default:
		return "", false, nil
	}
}

// ReadIdentifier extracts the embedded identifier from data.
// Unparseable documents are treated as carrying no identifier.
func ReadIdentifier(data []byte) (string, bool) {
	doc, err := Parse(data)
	if err != nil {
		return "", false
	}
	id, ok, err := doc.Identifier()
	if err != nil {
		return "", false
	}
	return id, ok
}
