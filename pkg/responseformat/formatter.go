// Package responseformat writes API responses as JSON or MessagePack.
package responseformat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a response encoding
type Format string

const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgPack = "application/x-msgpack"
)

// Negotiate picks the response format of a request. The format query parameter wins;
// otherwise an Accept header naming MessagePack selects it. JSON is the default.
func Negotiate(req *http.Request) Format {
	switch strings.ToLower(req.URL.Query().Get("format")) {
	case "msgpack":
		return MsgPack
	case "json":
		return JSON
	}
	if accept := req.Header.Get("Accept"); strings.Contains(accept, contentTypeMsgPack) || strings.Contains(accept, "application/msgpack") {
		return MsgPack
	}
	return JSON
}

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// ErrorBody is the payload of an error response
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WriteResponse writes data with a 200 status in the format requested by req
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) error {
	return f.WriteStatus(w, req, http.StatusOK, data, headers)
}

// WriteStatus writes data with the given status code in the format requested by req
func (f *Formatter) WriteStatus(w http.ResponseWriter, req *http.Request, status int, data any, headers map[string]string) error {
	for k, v := range headers {
		w.Header().Set(k, v)
	}

	if Negotiate(req) == MsgPack {
		return f.writeMsgPack(w, status, data)
	}
	return f.writeJSON(w, status, data)
}

// WriteError writes an error body with the given status code
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, message string) error {
	return f.WriteStatus(w, req, status, ErrorBody{Error: message, Status: status}, nil)
}

func (f *Formatter) writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", contentTypeMsgPack)
	w.WriteHeader(status)
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}
