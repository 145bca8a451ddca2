package middleware

import "net/http"

// writeJSONError writes the gateway's error envelope. kind and message are
// fixed strings and are not escaped.
func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"kind":"` + kind + `","message":"` + message + `"}}` + "\n"))
}
