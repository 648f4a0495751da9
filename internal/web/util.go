package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxBodyBytes leaves room for a chat photo sent as a data URI.
const maxBodyBytes = 10 << 20

type errorResponse struct {
	Error  string         `json:"error"`
	Fields map[int]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// intQuery returns the integer query parameter key, or def when it is
// missing or malformed.
func intQuery(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// intListQuery parses a comma separated list of integers, skipping anything
// that is not one.
func intListQuery(r *http.Request, key string) []int {
	var out []int
	for _, part := range strings.Split(r.URL.Query().Get(key), ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// staticFile returns the path of an existing regular file under dir for the
// request path, or "" when there is none.
func staticFile(dir, urlPath string) string {
	if dir == "" {
		return ""
	}
	clean := filepath.Clean("/" + urlPath)
	if clean == "/" {
		return ""
	}
	p := filepath.Join(dir, filepath.FromSlash(clean))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return ""
	}
	return p
}
