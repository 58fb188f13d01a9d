package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docsight/docsight/internal/domain"
)

const (
	// defaultPrompt is used when a file is uploaded without a question.
	defaultPrompt = "Analyze this document."

	// insightsPrompt is the fixed prompt for /upload-and-analyze.
	insightsPrompt = "Analyze this document and provide a brief bullet-point summary of insights and warnings."

	uploadSuccessMessage = "PDF uploaded and processed successfully"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Docsight is running."))
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes())

	question := r.FormValue("question")
	file, header, err := r.FormFile("file")
	hasFile := err == nil
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		s.respondError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	var payloads []domain.ImagePayload
	if hasFile {
		defer file.Close()
		s.logger.Info("processing file upload", zap.String("filename", header.Filename))
		if msg, ok := validateUpload(header); !ok {
			s.respondError(w, http.StatusBadRequest, msg)
			return
		}
		payloads, err = s.processPDF(r.Context(), file)
		if err != nil {
			s.respondInternal(w, "pdf processing", err)
			return
		}
	} else if question == "" {
		s.respondError(w, http.StatusBadRequest, "no question or file provided")
		return
	}

	prompt := question
	if hasFile && prompt == "" {
		prompt = defaultPrompt
	}
	answer, err := s.analyzer.Analyze(r.Context(), prompt, payloads)
	if err != nil {
		s.respondInternal(w, "analysis", err)
		return
	}
	s.respondJSON(w, http.StatusOK, domain.AskResponse{Question: question, Answer: answer})
}

func (s *Server) handleUploadAndAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes())

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()
	s.logger.Info("processing file upload", zap.String("filename", header.Filename))
	if msg, ok := validateUpload(header); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	payloads, err := s.processPDF(r.Context(), file)
	if err != nil {
		s.respondInternal(w, "pdf processing", err)
		return
	}
	answer, err := s.analyzer.Analyze(r.Context(), insightsPrompt, payloads)
	if err != nil {
		s.respondInternal(w, "analysis", err)
		return
	}
	s.respondJSON(w, http.StatusOK, domain.UploadResponse{Message: uploadSuccessMessage, Insights: answer})
}

// processPDF spools the upload, rasterizes every page, and encodes the
// results. The spooled file is removed on every exit path.
func (s *Server) processPDF(ctx context.Context, file multipart.File) ([]domain.ImagePayload, error) {
	spooled, err := s.spool.Save(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := spooled.Cleanup(); err != nil {
			s.logger.Warn("spool cleanup failed", zap.String("path", spooled.Path()), zap.Error(err))
		}
	}()

	pages, err := s.rasterizer.RenderFile(ctx, spooled.Path())
	if err != nil {
		return nil, err
	}
	s.logger.Info("rendered document", zap.Int("pages", len(pages)))
	return s.encoder.EncodeBatch(pages)
}

// validateUpload checks the upload's filename. Only the extension is
// trusted; content validation belongs to the rendering engine.
func validateUpload(header *multipart.FileHeader) (string, bool) {
	if header.Filename == "" {
		return "no selected file", false
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return "only PDF files are allowed", false
	}
	return "", true
}

// respondInternal maps a pipeline failure to a response. Invalid input is a
// plain 400; everything else becomes a generic 500 carrying only a
// correlation identifier, with the real error confined to the server log.
func (s *Server) respondInternal(w http.ResponseWriter, context string, err error) {
	if domain.KindOf(err) == domain.KindInvalidRequest {
		var de *domain.Error
		errors.As(err, &de)
		s.respondError(w, http.StatusBadRequest, de.Message)
		return
	}
	errorID := uuid.NewString()[:8]
	s.logger.Error("request failed",
		zap.String("error_id", errorID),
		zap.String("context", context),
		zap.Error(err),
	)
	s.respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
		Error:   "An internal error occurred",
		ErrorID: errorID,
		Message: "Please contact support with this error ID if the problem persists",
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
