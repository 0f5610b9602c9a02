package server

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doclens/doclens/internal/flatten"
	"github.com/doclens/doclens/internal/radar"
	"github.com/doclens/doclens/internal/render"
	"github.com/doclens/doclens/internal/version"
)

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/locate", s.corsMiddleware(s.rateLimitMiddleware(s.locateHandler)))
	mux.HandleFunc("/scan", s.corsMiddleware(s.rateLimitMiddleware(s.scanHandler)))
	mux.HandleFunc("/scan/ws", s.scanWebSocketHandler)
	mux.HandleFunc("/print", s.corsMiddleware(s.rateLimitMiddleware(s.printHandler)))
	mux.Handle("/metrics", promhttp.Handler())
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// locateHandler serves single-page term location requests.
func (s *Server) locateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" || req.Page < 1 {
		s.writeErrorResponse(w, "document_id and page are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.locator.Locate(r.Context(), req.DocumentID, req.Page, req.TermSet())
	if err != nil {
		lookupsTotal.WithLabelValues("locate", "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, render.ErrSourceUnavailable) {
			status = http.StatusNotFound
		}
		s.writeErrorResponse(w, fmt.Sprintf("Term location failed: %v", err), status)
		return
	}

	lookupsTotal.WithLabelValues("locate", "success").Inc()
	lookupDuration.WithLabelValues("locate").Observe(time.Since(start).Seconds())
	matchesPerPage.Observe(float64(len(res.Matches)))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(LocateResponse{Success: true, Result: res}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding locate response: %v\n", err)
	}
}

// scanHandler runs a full radar scan and returns only the terminal report.
// Callers wanting incremental progress use the websocket endpoint instead.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		s.writeErrorResponse(w, "document_id is required", http.StatusBadRequest)
		return
	}

	scanner := radar.NewScanner(s.locator, radar.WithBatchSize(s.batchSize))

	start := time.Now()
	report, err := scanner.Scan(r.Context(), req.DocumentID, req.TermSet(), make(radar.Memo))
	if err != nil {
		lookupsTotal.WithLabelValues("scan", "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, render.ErrSourceUnavailable) {
			status = http.StatusNotFound
		}
		s.writeErrorResponse(w, fmt.Sprintf("Radar scan failed: %v", err), status)
		return
	}

	lookupsTotal.WithLabelValues("scan", "success").Inc()
	lookupDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding scan response: %v\n", err)
	}
}

// printHandler renders the highlight-baked print output. The default
// response is a zip of per-page PNGs; format=pdf assembles a single
// print-only PDF.
func (s *Server) printHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DocumentID == "" {
		s.writeErrorResponse(w, "document_id is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.printer.Flatten(r.Context(), req.DocumentID, req.TermSet())
	if err != nil {
		lookupsTotal.WithLabelValues("print", "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, render.ErrSourceUnavailable) {
			status = http.StatusNotFound
		}
		s.writeErrorResponse(w, fmt.Sprintf("Print flattening failed: %v", err), status)
		return
	}
	if len(res.Pages) == 0 {
		lookupsTotal.WithLabelValues("print", "error").Inc()
		s.writeErrorResponse(w, "No pages could be rendered", http.StatusUnprocessableEntity)
		return
	}

	lookupsTotal.WithLabelValues("print", "success").Inc()
	lookupDuration.WithLabelValues("print").Observe(time.Since(start).Seconds())
	printPagesSkipped.Add(float64(res.PagesSkipped))

	w.Header().Set("X-Doclens-Pages-Skipped", fmt.Sprintf("%d", res.PagesSkipped))

	if r.URL.Query().Get("format") == "pdf" {
		s.writePrintPDF(w, res)
		return
	}
	s.writePrintZip(w, res)
}

// writePrintPDF assembles and streams the flattened pages as one PDF.
func (s *Server) writePrintPDF(w http.ResponseWriter, res *flatten.Result) {
	tempDir, err := os.MkdirTemp("", "doclens-printout-*")
	if err != nil {
		s.writeErrorResponse(w, "Failed to assemble print output", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	outFile := filepath.Join(tempDir, "print.pdf")
	if err := flatten.AssemblePDF(res, outFile); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Failed to assemble print output: %v", err), http.StatusInternalServerError)
		return
	}

	f, err := os.Open(outFile) //nolint:gosec // G304: path is in our own temp dir
	if err != nil {
		s.writeErrorResponse(w, "Failed to read print output", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.DocumentID+"-print.pdf"))
	if _, err := io.Copy(w, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error streaming print pdf: %v\n", err)
	}
}

// writePrintZip streams the flattened pages as a zip of PNGs.
func (s *Server) writePrintZip(w http.ResponseWriter, res *flatten.Result) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.DocumentID+"-print.zip"))

	zw := zip.NewWriter(w)
	defer func() { _ = zw.Close() }()

	for _, page := range res.Pages {
		f, err := zw.Create(fmt.Sprintf("page_%05d.png", page.Number))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing print zip: %v\n", err)
			return
		}
		if err := png.Encode(f, page.Image); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding print page %d: %v\n", page.Number, err)
			return
		}
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Success: false, Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error, but can't send another response
		fmt.Fprintf(os.Stderr, "Error writing error response: %v\n", err)
	}
}
