package pdf

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	pdflib "github.com/digitorus/pdf"
)

// xref section flavours
const (
	xrefTable  = "table"
	xrefStream = "stream"
)

// tail of the file searched for the last startxref keyword
const startxrefWindow = 1024

type objref struct {
	id  uint32
	gen uint16
}

func (r objref) String() string { return fmt.Sprintf("%d %d R", r.id, r.gen) }

// Embedding is a prepared incremental update that adds the identifier to the
// document information dictionary.
//
// All inspection of the document happens in PrepareEmbedding, so Apply cannot fail.
// Callers can therefore commit other state (such as a stored record) between the two
// steps knowing the artifact will always be produced.
type Embedding struct {
	original []byte

	// xref flavour and offset of the document's latest cross-reference section
	flavour  string
	prevXref int64

	// next free object number (the previous trailer's /Size)
	size int64

	root objref

	// trailer /ID strings, written back unchanged
	fileID [][]byte

	// existing info entries, already serialized as "/Key value"
	infoEntries []string
}

// PrepareEmbedding inspects the document and returns the update that will embed an identifier.
// Encrypted documents are refused because their strings would need re-encrypting.
func (d *Document) PrepareEmbedding() (e *Embedding, err error) {
	defer recoverParse("prepare embedding", &err)

	trailer := d.reader.Trailer()
	if !trailer.Key("Encrypt").IsNull() {
		return nil, &ParseError{Op: "prepare embedding", Err: ErrEncrypted}
	}

	prevXref, flavour, err := locateXref(d.data)
	if err != nil {
		return nil, &ParseError{Op: "prepare embedding", Err: err}
	}

	size := trailer.Key("Size").Int64()
	if size < 1 {
		return nil, &ParseError{Op: "prepare embedding", Err: fmt.Errorf("invalid trailer /Size %d", size)}
	}

	rootValue := trailer.Key("Root")
	if rootValue.Kind() != pdflib.Dict {
		return nil, &ParseError{Op: "prepare embedding", Err: fmt.Errorf("trailer /Root is not a dictionary")}
	}
	rootPtr := rootValue.GetPtr()
	if rootPtr.GetID() == 0 {
		return nil, &ParseError{Op: "prepare embedding", Err: fmt.Errorf("trailer /Root is not an indirect object")}
	}

	e = &Embedding{
		original: d.data,
		flavour:  flavour,
		prevXref: prevXref,
		size:     size,
		root:     objref{id: rootPtr.GetID(), gen: rootPtr.GetGen()},
	}

	if ids := trailer.Key("ID"); ids.Kind() == pdflib.Array && ids.Len() == 2 {
		for i := 0; i < 2; i++ {
			e.fileID = append(e.fileID, []byte(ids.Index(i).RawString()))
		}
	}

	info := trailer.Key("Info")
	if info.Kind() == pdflib.Dict {
		for _, key := range info.Keys() {
			if key == IdentifierKey {
				continue
			}
			if value, ok := serializeValue(info.Key(key)); ok {
				e.infoEntries = append(e.infoEntries, "/"+escapeName(key)+" "+value)
			}
		}
	}

	return e, nil
}

// Apply returns a new copy of the document with the identifier embedded.
// The original bytes are left untouched and appear unchanged at the start of the result.
func (e *Embedding) Apply(identifier string) []byte {
	var buf bytes.Buffer
	buf.Grow(len(e.original) + 512)
	buf.Write(e.original)
	if n := len(e.original); n > 0 && e.original[n-1] != '\n' && e.original[n-1] != '\r' {
		buf.WriteByte('\n')
	}

	infoID := e.size
	infoOffset := int64(buf.Len())

	fmt.Fprintf(&buf, "%d 0 obj\n<<", infoID)
	for _, entry := range e.infoEntries {
		buf.WriteString(" ")
		buf.WriteString(entry)
	}
	fmt.Fprintf(&buf, " /%s %s >>\nendobj\n", IdentifierKey, literalString(identifier))

	xrefOffset := int64(buf.Len())

	switch e.flavour {
	case xrefStream:
		e.writeXrefStream(&buf, infoID, infoOffset, xrefOffset)
	default:
		e.writeXrefTable(&buf, infoID, infoOffset)
	}

	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func (e *Embedding) writeXrefTable(buf *bytes.Buffer, infoID, infoOffset int64) {
	fmt.Fprintf(buf, "xref\n%d 1\n%010d 00000 n \n", infoID, infoOffset)
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root %s /Info %d 0 R /Prev %d%s >>\n",
		infoID+1, e.root, infoID, e.prevXref, e.idEntry())
}

// writeXrefStream writes an uncompressed cross-reference stream covering the
// info object and the stream object itself
func (e *Embedding) writeXrefStream(buf *bytes.Buffer, infoID, infoOffset, xrefOffset int64) {
	xrefID := infoID + 1

	// /W [1 w 2]: type, offset, generation
	w := offsetWidth(xrefOffset)
	data := make([]byte, 0, 2*(1+w+2))
	for _, offset := range []int64{infoOffset, xrefOffset} {
		data = append(data, 1)
		if w == 4 {
			data = binary.BigEndian.AppendUint32(data, uint32(offset))
		} else {
			data = binary.BigEndian.AppendUint64(data, uint64(offset))
		}
		data = binary.BigEndian.AppendUint16(data, 0)
	}

	fmt.Fprintf(buf, "%d 0 obj\n<< /Type /XRef /Size %d /Index [%d 2] /W [1 %d 2] /Root %s /Info %d 0 R /Prev %d%s /Length %d >>\nstream\n",
		xrefID, xrefID+1, infoID, w, e.root, infoID, e.prevXref, e.idEntry(), len(data))
	buf.Write(data)
	buf.WriteString("\nendstream\nendobj\n")
}

// offsetWidth is the byte width of the offset field needed to hold maxOffset
func offsetWidth(maxOffset int64) int {
	if maxOffset <= math.MaxUint32 {
		return 4
	}
	return 8
}

func (e *Embedding) idEntry() string {
	if len(e.fileID) != 2 {
		return ""
	}
	return fmt.Sprintf(" /ID [<%s> <%s>]", hex.EncodeToString(e.fileID[0]), hex.EncodeToString(e.fileID[1]))
}

// Embed returns a copy of data with identifier embedded in the document information dictionary
func Embed(data []byte, identifier string) ([]byte, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	e, err := doc.PrepareEmbedding()
	if err != nil {
		return nil, err
	}
	return e.Apply(identifier), nil
}

// locateXref finds the offset named by the last startxref keyword and reports whether
// it points at an xref table or a cross-reference stream
func locateXref(data []byte) (int64, string, error) {
	tail := data
	if len(tail) > startxrefWindow {
		tail = tail[len(tail)-startxrefWindow:]
	}

	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 && len(tail) < len(data) {
		// trailing padding after %%EOF can push the keyword out of the window
		tail = data
		i = bytes.LastIndex(tail, []byte("startxref"))
	}
	if i < 0 {
		return 0, "", ErrNoXref
	}

	fields := bytes.Fields(tail[i+len("startxref"):])
	if len(fields) == 0 {
		return 0, "", ErrNoXref
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil || offset < 0 || offset >= int64(len(data)) {
		return 0, "", fmt.Errorf("invalid startxref offset %q", fields[0])
	}

	section := bytes.TrimLeft(data[offset:], " \t\r\n\f\x00")
	if bytes.HasPrefix(section, []byte("xref")) {
		return offset, xrefTable, nil
	}
	return offset, xrefStream, nil
}

// serializeValue writes a simple info dictionary value in PDF syntax.
// Strings are written in hex form so their bytes (including UTF-16 text) survive unchanged.
func serializeValue(v pdflib.Value) (string, bool) {
	switch v.Kind() {
	case pdflib.String:
		return "<" + hex.EncodeToString([]byte(v.RawString())) + ">", true
	case pdflib.Name:
		return "/" + escapeName(v.Name()), true
	case pdflib.Integer:
		return strconv.FormatInt(v.Int64(), 10), true
	case pdflib.Real:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64), true
	case pdflib.Bool:
		return strconv.FormatBool(v.Bool()), true
	default:
		return "", false
	}
}

// escapeName encodes a PDF name, using #xx for delimiters and non-regular characters
func escapeName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '!' || c > '~' || strings.IndexByte("()<>[]{}/%#", c) >= 0 {
			fmt.Fprintf(&b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// literalString writes s as a PDF literal string
func literalString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)
	return "(" + r.Replace(s) + ")"
}
