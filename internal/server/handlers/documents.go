package handlers

// documents.go implements the sign, verify and revoke endpoints.

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/radwayousryyy/InkCrypt/internal/api"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
	"github.com/radwayousryyy/InkCrypt/internal/provenance"
)

// multipartMemory is the part of a multipart upload held in memory; the rest spills to temp files
const multipartMemory = 8 << 20

// DocumentHandler handles the provenance endpoints
type DocumentHandler struct {
	binder   *provenance.Binder
	verifier *provenance.Verifier
	revoker  *provenance.Revoker
}

func NewDocumentHandler(binder *provenance.Binder, verifier *provenance.Verifier, revoker *provenance.Revoker) *DocumentHandler {
	return &DocumentHandler{
		binder:   binder,
		verifier: verifier,
		revoker:  revoker,
	}
}

// HandleSign godoc
//
//	@Summary		Sign a PDF document
//	@Description	Binds the uploaded PDF to a new identifier.
//	@Description
//	@Description	The service fingerprints the page content of the document, stores a record of the fingerprint
//	@Description	under a new identifier and returns a copy of the document with the identifier embedded in its metadata.
//	@Description	The copy is produced as an incremental update so the original bytes and page content are unchanged.
//	@Description
//	@Description	The identifier is also returned in the `X-InkCrypt-UUID` response header.
//	@Tags			Documents
//	@Accept			multipart/form-data
//	@Produce		application/pdf
//	@Param			file	formData	file	true	"PDF document (file name must end in .pdf)"
//	@Success		200		{file}		binary	"signed PDF"
//	@Header			200		{string}	X-InkCrypt-UUID	"document identifier"
//	@Failure		400		{object}	api.ErrorResponse	"not a PDF, or the PDF could not be parsed"
//	@Failure		503		{object}	api.ErrorResponse	"record store unavailable"
//	@Router			/sign [post]
func (h *DocumentHandler) HandleSign(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readPDFUpload(r)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	result, err := h.binder.Bind(r.Context(), data)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("identifier", result.Identifier),
		slog.String("fingerprint", result.Record.Fingerprint),
	)

	w.Header().Set(api.IdentifierHeader, result.Identifier)
	api.RespondWithPDF(w, "signed_"+filename, result.Artifact)
}

// HandleVerify godoc
//
//	@Summary		Verify a PDF document
//	@Description	Checks the uploaded PDF against the record of the identifier embedded in it.
//	@Description
//	@Description	The response always has status 200 and reports the verdict in the body:
//	@Description	- `VALID` the document is authentic (uuid, signed_at and signer are included)
//	@Description	- `INVALID` the document has no identifier, or the identifier is unknown
//	@Description	- `REVOKED` the record has been revoked (reported even if the content is unchanged)
//	@Description	- `TAMPERED` the page content or the record attestation does not match
//	@Description	- `ERROR` verification could not be completed
//	@Tags			Documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"PDF document (file name must end in .pdf)"
//	@Success		200		{object}	api.VerifyResponse
//	@Failure		400		{object}	api.ErrorResponse	"not a PDF"
//	@Router			/verify [post]
func (h *DocumentHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	_, data, err := readPDFUpload(r)
	if err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	verdict := h.verifier.Verify(r.Context(), data)

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("verdict", string(verdict.Outcome())),
		slog.String("confidence", string(verdict.Confidence())),
	)

	api.RespondWithJSONPayload(w, http.StatusOK, api.NewVerifyResponse(verdict))
}

// HandleRevoke godoc
//
//	@Summary		Revoke a document
//	@Description	Marks the record for the identifier as revoked. Later verifications of the document report `REVOKED`.
//	@Description
//	@Description	Revocation cannot be undone. Revoking an already revoked document succeeds.
//	@Tags			Documents
//	@Accept			multipart/form-data,application/x-www-form-urlencoded
//	@Produce		json
//	@Param			uuid	formData	string	true	"document identifier"
//	@Success		200		{object}	api.RevokeResponse
//	@Failure		400		{object}	api.ErrorResponse	"uuid field missing"
//	@Failure		404		{object}	api.ErrorResponse	"document not found"
//	@Failure		503		{object}	api.ErrorResponse	"record store unavailable"
//	@Router			/revoke [post]
func (h *DocumentHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	identifier := strings.TrimSpace(r.FormValue("uuid"))
	if identifier == "" {
		api.RespondWithErrorResponse(w, r, api.NewMalformedRequestError("uuid field is required"))
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("identifier", identifier))

	if err := h.revoker.Revoke(r.Context(), identifier); err != nil {
		api.RespondWithErrorResponse(w, r, err)
		return
	}

	api.RespondWithJSONPayload(w, http.StatusOK, api.RevokeResponse{
		Success: true,
		Message: "Document revoked",
	})
}

// readPDFUpload returns the name and contents of the multipart "file" field
func readPDFUpload(r *http.Request) (string, []byte, error) {
	if err := parseForm(r); err != nil {
		return "", nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, api.WrapMalformedRequestError(err, "file field is required")
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return "", nil, api.NewInvalidDocumentError("Only PDF files are supported")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, api.WrapMalformedRequestError(err, "failed to read uploaded file")
	}
	return filename, data, nil
}

// parseForm parses a multipart or url-encoded form body
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
		return api.NewRequestTooLargeError("request body exceeds the maximum allowed size")
	}
	return api.WrapMalformedRequestError(err, "failed to parse form")
}
