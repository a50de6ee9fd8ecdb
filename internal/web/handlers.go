package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"docgen/internal/core"
	"docgen/internal/logging"
)

// handleHealth reports service liveness. The template is loaded and
// verified at startup, so a running process is a healthy one.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleGenerate runs the full pipeline with the mode taken from the
// multipart form and streams the resulting archive back as a download.
// The upload is read first so the body size cap is installed before any
// form field is touched; FormValue below reads from the parsed form.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	mode, err := core.ParseMode(r.FormValue("mode"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	in.Mode = mode

	s.generate(w, r, in)
}

// handleGenerateFixed serves the legacy routes that imply a mode.
func (s *Server) handleGenerateFixed(mode core.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := s.readUpload(w, r)
		if !ok {
			return
		}
		in.Mode = mode

		s.generate(w, r, in)
	}
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, in core.Input) {
	archive, err := s.service.Generate(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archive.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive.Data); err != nil {
		logging.FromContext(r.Context()).Warn("response write failed", "error", err)
	}
}

// handlePreview parses and normalizes the upload without generating
// documents, returning the records as JSON.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	records, err := s.service.Preview(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, map[string]any{"records": records, "count": len(records)})
}

// readUpload extracts the uploaded file from the multipart form. The body
// is capped before parsing so an oversized upload is rejected without
// buffering it; the pipeline re-checks the limit on the decoded bytes.
// Every handler must call this before touching any other form field, or
// the cap never takes effect.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.Input, bool) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+4096) // multipart framing overhead

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, r, &core.InputError{
				Kind:   core.InputTooLarge,
				Detail: fmt.Sprintf("body exceeds %d bytes", maxSize),
			})
		} else {
			writeError(w, r, http.StatusBadRequest, "invalid multipart form")
		}
		return core.Input{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, &core.InputError{Kind: core.InputMissingFile})
		return core.Input{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read file")
		return core.Input{}, false
	}

	return core.Input{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
