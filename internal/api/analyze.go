package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/service"
)

// vcfInput is a resolved VCF source: a readable file plus its provenance.
// cleanup is true only for uploads staged into the temp dir.
type vcfInput struct {
	path    string
	name    string
	size    int64
	cleanup bool
}

// handleAnalyze runs the pipeline for one drug against an uploaded or
// referenced VCF file.
func (s *Server) handleAnalyze(c *gin.Context) {
	drug := strings.TrimSpace(c.PostForm("drug"))
	if drug == "" {
		s.badRequest(c, "drug", "form field 'drug' is required")
		return
	}

	patientID := patientIDOrDefault(c.PostForm("patient_id"))

	input, err := s.resolveVCFInput(c)
	if err != nil {
		s.inputError(c, err)
		return
	}
	defer s.cleanupInput(input)

	variants, parsingOK := s.parseVariants(input.path)

	analysis, aerr := s.analyzer.AnalyzeDrug(c.Request.Context(), drug, variants)
	if aerr != nil {
		s.internalError(c, aerr)
		return
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	c.JSON(http.StatusOK, s.buildDrugResponse(patientID, timestamp, analysis, variants, qualityMetrics{
		parsingOK: parsingOK,
		total:     len(variants),
		fileName:  input.name,
		fileSize:  input.size,
	}))
}

// handleAnalyzeBatch runs the pipeline for a comma-separated drug list and
// adds polypharmacy bottleneck warnings across the panel.
func (s *Server) handleAnalyzeBatch(c *gin.Context) {
	var drugs []string
	for _, d := range strings.Split(c.PostForm("drugs"), ",") {
		if name := strings.TrimSpace(d); name != "" {
			drugs = append(drugs, strings.ToUpper(name))
		}
	}
	if len(drugs) == 0 {
		s.badRequest(c, "drugs", "provide at least one drug in 'drugs'")
		return
	}

	patientID := patientIDOrDefault(c.PostForm("patient_id"))

	input, err := s.resolveVCFInput(c)
	if err != nil {
		s.inputError(c, err)
		return
	}
	defer s.cleanupInput(input)

	variants, parsingOK := s.parseVariants(input.path)

	analyses, aerr := s.analyzer.AnalyzePanel(c.Request.Context(), drugs, variants)
	if aerr != nil {
		s.internalError(c, aerr)
		return
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	quality := qualityMetrics{
		parsingOK: parsingOK,
		total:     len(variants),
		fileName:  input.name,
		fileSize:  input.size,
	}

	results := make([]drugResponse, 0, len(analyses))
	for _, analysis := range analyses {
		results = append(results, s.buildDrugResponse(patientID, timestamp, analysis, variants, quality))
	}

	warnings := service.DetectBottlenecks(drugs, variants)
	if warnings == nil {
		warnings = []domain.BottleneckWarning{}
	}

	c.JSON(http.StatusOK, batchResponse{
		PatientID:            patientID,
		Timestamp:            timestamp,
		Results:              results,
		PolypharmacyWarnings: warnings,
	})
}

// parseVariants extracts marker variants from a VCF file. Any failure
// degrades to an empty variant set; the pipeline answers Unknown then.
func (s *Server) parseVariants(path string) ([]domain.Variant, bool) {
	f, err := os.Open(path)
	if err != nil {
		s.log.WithError(err).Warn("failed to open VCF input")
		return nil, false
	}
	defer f.Close()

	variants, err := s.extractor.Extract(f)
	if err != nil {
		s.log.WithError(err).Warn("failed to parse VCF input")
		return nil, false
	}
	return variants, true
}

// resolveVCFInput resolves the VCF source from either the multipart `vcf`
// upload or the `vcf_path` form field, exclusively.
func (s *Server) resolveVCFInput(c *gin.Context) (*vcfInput, *domain.APIError) {
	requestID := c.GetString("correlation_id")
	normalized := NormalizeVCFPath(c.PostForm("vcf_path"))

	file, ferr := c.FormFile("vcf")
	hasUpload := ferr == nil && file != nil

	if hasUpload && normalized != "" {
		return nil, domain.NewAPIError(domain.ErrInvalidInput,
			"Provide either 'vcf' upload or 'vcf_path', not both", "", requestID)
	}

	if hasUpload {
		if !strings.HasSuffix(strings.ToLower(file.Filename), ".vcf") {
			return nil, domain.NewAPIError(domain.ErrInvalidInput,
				"File must be a .vcf file", file.Filename, requestID)
		}
		if file.Size > s.config.Upload.MaxFileSize {
			return nil, domain.NewAPIError(domain.ErrFileTooLarge,
				fmt.Sprintf("File size exceeds %dMB limit", s.config.Upload.MaxFileSize/(1024*1024)),
				"", requestID)
		}

		tempDir := s.config.Upload.TempDir
		if tempDir == "" {
			tempDir = os.TempDir()
		}
		dest := filepath.Join(tempDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, dest); err != nil {
			return nil, domain.NewAPIError(domain.ErrInternalServer,
				"Error saving file", err.Error(), requestID)
		}
		return &vcfInput{path: dest, name: file.Filename, size: file.Size, cleanup: true}, nil
	}

	if normalized != "" {
		if !strings.HasSuffix(strings.ToLower(normalized), ".vcf") {
			return nil, domain.NewAPIError(domain.ErrInvalidInput,
				"vcf_path must point to a .vcf file", normalized, requestID)
		}
		info, err := os.Stat(normalized)
		if err != nil || info.IsDir() {
			return nil, domain.NewAPIError(domain.ErrInvalidInput,
				fmt.Sprintf("VCF file not found at path: %s", normalized), "", requestID)
		}
		if info.Size() > s.config.Upload.MaxFileSize {
			return nil, domain.NewAPIError(domain.ErrFileTooLarge,
				fmt.Sprintf("File size exceeds %dMB limit", s.config.Upload.MaxFileSize/(1024*1024)),
				"", requestID)
		}
		return &vcfInput{path: normalized, name: filepath.Base(normalized), size: info.Size(), cleanup: false}, nil
	}

	return nil, domain.NewAPIError(domain.ErrInvalidInput,
		"Provide a VCF via upload field 'vcf' or form field 'vcf_path'", "", requestID)
}

// cleanupInput removes staged uploads after processing. Referenced paths
// are never deleted.
func (s *Server) cleanupInput(input *vcfInput) {
	if input == nil || !input.cleanup {
		return
	}
	if err := os.Remove(input.path); err != nil {
		s.log.WithError(err).WithField("path", input.path).Warn("failed to purge uploaded VCF")
	}
}

// NormalizeVCFPath turns path strings like @"C:\data\file.vcf" into a
// usable file path: strips a leading '@', surrounding quotes, and expands
// env vars and a home-relative prefix.
func NormalizeVCFPath(raw string) string {
	path := strings.TrimSpace(raw)
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "@") {
		path = strings.TrimLeft(path[1:], " \t")
	}
	if len(path) >= 2 && path[0] == path[len(path)-1] && (path[0] == '"' || path[0] == '\'') {
		path = path[1 : len(path)-1]
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

func patientIDOrDefault(raw string) string {
	if id := strings.TrimSpace(raw); id != "" {
		return id
	}
	hex := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "PATIENT_" + hex[:8]
}

func (s *Server) badRequest(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":          domain.NewValidationError(field, message, nil),
		"code":           domain.ErrValidation,
		"correlation_id": c.GetString("correlation_id"),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) inputError(c *gin.Context, apiErr *domain.APIError) {
	status := http.StatusBadRequest
	if apiErr.Code == domain.ErrInternalServer {
		status = http.StatusInternalServerError
	}
	c.JSON(status, apiErr)
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.log.WithError(err).Error("analysis pipeline failed")
	c.JSON(http.StatusInternalServerError, domain.NewAPIError(
		domain.ErrInternalServer, "Internal server error", err.Error(),
		c.GetString("correlation_id")))
}
