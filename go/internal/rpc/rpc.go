// Package rpc mounts connect handlers that exchange plain Go structs as JSON.
package rpc

import (
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// PackagePrefix is the connect package every roster service lives under.
const PackagePrefix = "arena.roster.v1."

// Codec is a connect codec for non-protobuf messages. It registers as
// "json" so it answers application/json and application/connect+json.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// Procedure returns the full procedure path of method on service.
func Procedure(service, method string) string {
	return "/" + PackagePrefix + service + "/" + method
}

// WithCodec prepends the JSON codec to opts.
func WithCodec(opts ...connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

// Mount routes procedure paths of one service and returns the service prefix
// to register on a ServeMux.
func Mount(service string, handlers map[string]http.Handler) (string, http.Handler) {
	prefix := "/" + PackagePrefix + service + "/"
	return prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok || !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
