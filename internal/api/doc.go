// Package api defines the wire types of the InkCrypt HTTP API and the helpers
// used by the handlers to write responses.
//
// **error handling**
// crypto and provenance have their own error types. They are mapped to API error
// codes and returned to the client as an ErrorResponse.
// Use RespondWithErrorResponse() to create and send the error response.
package api
