package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resumescore/internal/ai"
	"resumescore/internal/errors"
	"resumescore/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultMultipartMemory = 32 << 20

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer("resumescore.api").Start(ctx, name)
}

// analyzeHandler scores resume text sent as JSON
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "api.analyze")
	defer span.End()

	var req types.AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, span, err)
		return
	}
	span.SetAttributes(
		attribute.Int("request.text_length", len(req.Text)),
		attribute.Bool("request.augment", req.Augment),
	)

	analysis, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	s.saveAndRespond(ctx, w, span, analysis)
}

// uploadHandler extracts and scores a resume sent as a multipart file
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "api.analyze_upload")
	defer span.End()

	maxMemory := s.MaxRequestSize
	if maxMemory <= 0 {
		maxMemory = defaultMultipartMemory
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		s.writeError(w, span, bodyError(err, "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, span, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"multipart field 'file' is required", err))
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Warn("Failed to close uploaded file", "error", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, span, bodyError(err, "failed to read uploaded file"))
		return
	}

	req := types.AnalyzeRequest{
		FileName:   header.Filename,
		ResumeID:   r.FormValue("resumeId"),
		TargetRole: r.FormValue("targetRole"),
		Industry:   r.FormValue("industry"),
	}
	if v := r.FormValue("augment"); v != "" {
		augment, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, span, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("augment must be a boolean, got %q", v), err))
			return
		}
		req.Augment = augment
	}
	span.SetAttributes(
		attribute.String("request.file_name", header.Filename),
		attribute.Int64("request.file_size", header.Size),
	)

	analysis, err := s.analyzer.AnalyzeFile(ctx, data, req)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	s.saveAndRespond(ctx, w, span, analysis)
}

func (s *Server) saveAndRespond(ctx context.Context, w http.ResponseWriter, span trace.Span, analysis *types.Analysis) {
	if _, err := s.store.Save(ctx, analysis); err != nil {
		s.writeError(w, span, err)
		return
	}
	span.SetAttributes(
		attribute.String("analysis.id", analysis.ID),
		attribute.Float64("analysis.overall", analysis.Overall),
		attribute.Bool("analysis.augmented", analysis.Augmented),
	)
	writeJSON(w, http.StatusOK, analysis)
}

// getAnalysisHandler returns a stored analysis
func (s *Server) getAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "api.get_analysis")
	defer span.End()

	id := r.PathValue("id")
	span.SetAttributes(attribute.String("analysis.id", id))

	analysis, err := s.store.Get(ctx, id)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// matchHandler compares a resume with a job description
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "api.match")
	defer span.End()

	var req types.JobMatchRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, span, err)
		return
	}

	match, err := s.analyzer.MatchJob(ctx, req)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.Bool("success", match.Success), attribute.Int("match.score", match.MatchScore))
	writeJSON(w, http.StatusOK, match)
}

// rewriteHandler improves one resume section
func (s *Server) rewriteHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "api.rewrite")
	defer span.End()

	var req types.RewriteRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, span, err)
		return
	}

	result, err := s.analyzer.Rewrite(ctx, req)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.Bool("success", result.Augmented))
	writeJSON(w, http.StatusOK, result)
}

// chatHandler answers a question about a resume
func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "api.chat")
	defer span.End()

	var req types.ChatRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, span, err)
		return
	}

	answer, err := s.analyzer.Chat(ctx, req)
	if err != nil {
		s.writeError(w, span, err)
		return
	}
	span.SetAttributes(attribute.Bool("success", answer.Augmented))
	writeJSON(w, http.StatusOK, answer)
}

// healthHandler reports service health including model and certificate status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.HealthTimeout)
	defer cancel()

	response := map[string]any{
		"status":         "healthy",
		"service":        "resumescore",
		"version":        s.Version,
		"policy_version": s.analyzer.PolicyVersion(),
	}
	healthy := true

	if s.augmenter != nil {
		completer := s.augmenter.Completer()
		info := completer.ModelInfo(ctx)
		response["ai_model"] = info
		response["circuit_breaker"] = ai.BreakerStats(completer)
		// A provider of none is a supported configuration, not a fault
		if s.AppConfig.AIEnabled() && !info.Available {
			healthy = false
		}
	}

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if ok, _ := certStatus["healthy"].(bool); !ok {
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumescore",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    len(s.APIKeys),
		},
		"policy_version": s.analyzer.PolicyVersion(),
		"store": map[string]any{
			"driver": s.store.Driver(),
		},
		"ai": map[string]any{
			"provider": s.AppConfig.AI.Provider,
			"model":    s.AppConfig.AI.Model,
		},
	}

	if s.augmenter != nil {
		response["circuit_breaker"] = ai.BreakerStats(s.augmenter.Completer())
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.CertificateManager != nil {
		response["certificates"] = s.CertificateManager.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

// checkCertificateHealth classifies the time left before the certificate expires
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	certStatus := make(map[string]any)
	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	const (
		criticalThreshold = 24 * time.Hour
		warningThreshold  = 7 * 24 * time.Hour
	)

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case timeToExpiry <= criticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case timeToExpiry <= warningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}
	certStatus["reload"] = s.CertificateManager.Stats()

	return certStatus
}

// parseJSONRequest parses a JSON request body into v
func parseJSONRequest(r *http.Request, v any) error {
	mediaType := strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0])
	if mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return bodyError(err, "failed to read request body")
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("failed to parse JSON: %v", err), err)
	}

	return nil
}

// bodyError reports an oversized body as FILE_TOO_LARGE and anything else
// as an invalid request
func bodyError(err error, message string) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, message, err)
}

// statusFor maps an error to its HTTP status and public code
func statusFor(err error) (int, string, string) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}

	switch {
	case appErr.Code == errors.ErrCodeAnalysisNotFound:
		return http.StatusNotFound, appErr.Code, appErr.Message
	case appErr.Type == errors.ErrorTypeValidation:
		return http.StatusBadRequest, appErr.Code, appErr.Message
	case appErr.Type == errors.ErrorTypeExtraction:
		return http.StatusUnprocessableEntity, appErr.Code, appErr.Message
	default:
		return http.StatusInternalServerError, appErr.Code, appErr.Message
	}
}

// writeError logs err, records it on span and writes the mapped response
func (s *Server) writeError(w http.ResponseWriter, span trace.Span, err error) {
	status, code, message := statusFor(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "status", status)
	} else {
		s.Logger.Debug("Request rejected", "status", status, "code", code, "message", message)
	}
	writeErrorResponse(w, code, message, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent, so an encoding failure can only be dropped
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
