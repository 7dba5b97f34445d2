// Package web serves the upload form: a flights CSV (plus optional OE CSV)
// in, a formatted logbook CSV back as an attachment.
package web

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"logbook-formatter/internal/engine"
	"logbook-formatter/internal/logbook"
)

const maxUploadBytes = 16 << 20

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Logbook Formatter</title></head>
<body>
<h1>Logbook Formatter</h1>
<form method="post" enctype="multipart/form-data">
  <p>Flights CSV: <input type="file" name="flights_file" accept=".csv" required></p>
  <p>OE data CSV (optional): <input type="file" name="oe_file" accept=".csv"></p>
  <p>Crew position:
    <select name="crew_position">
      <option value="captain">Captain</option>
      <option value="first_officer">First Officer</option>
      <option value="relief_first_officer">Relief First Officer</option>
      <option value="relief_captain">Relief Captain</option>
      <option value="auto">Auto (from OE data)</option>
    </select>
  </p>
  <p>Format:
    <select name="format">
      <option value="faa">FAA</option>
      <option value="aero">logbook.aero</option>
    </select>
  </p>
  <p><input type="submit" value="Process"></p>
</form>
</body>
</html>
`

// Server handles logbook uploads over HTTP.
type Server struct {
	Runner *logbook.Runner
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

// Serve starts the upload server on the given address.
func (s *Server) Serve(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("upload server error: %v", err)
		}
	}()
	log.Printf("upload form listening on %s", addr)
	return srv
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, indexHTML)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	flights, header, err := r.FormFile("flights_file")
	if err != nil {
		http.Error(w, "no flights file selected", http.StatusBadRequest)
		return
	}
	defer flights.Close()
	if !isCSV(header) {
		http.Error(w, "invalid file type, please upload CSV files", http.StatusBadRequest)
		return
	}

	var oeData io.Reader
	if f, h, err := r.FormFile("oe_file"); err == nil {
		defer f.Close()
		if !isCSV(h) {
			http.Error(w, "invalid OE file type, please upload CSV files", http.StatusBadRequest)
			return
		}
		oeData = f
	}

	role := engine.Role(r.FormValue("crew_position"))
	if role == "" {
		role = engine.RoleCaptain
	}
	format, err := logbook.ParseFormat(r.FormValue("format"))
	if err != nil {
		format = logbook.FormatFAA
	}

	var out bytes.Buffer
	report, err := s.Runner.Run(r.Context(), format, role, flights, oeData, &out)
	if err != nil {
		http.Error(w, "error processing files: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	log.Printf("upload processed: %d rows, %d skipped", report.Processed, report.Skipped)

	name := logbook.OutputFilename(format, header.Filename, time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(out.Bytes())
}

func isCSV(h *multipart.FileHeader) bool {
	return strings.HasSuffix(strings.ToLower(h.Filename), ".csv")
}
