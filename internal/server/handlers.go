package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/ai"
	"github.com/spigell/devhire-ats/internal/ats"
	"github.com/spigell/devhire-ats/internal/extract"
	"github.com/spigell/devhire-ats/internal/logger"
)

const (
	msgRequired = "Resume and Job Description are required"
	msgTooLarge = "Resume file is too large"
)

type analyzeResponse struct {
	Score           int        `json:"score"`
	MatchedKeywords []string   `json:"matchedKeywords"`
	MissingKeywords []string   `json:"missingKeywords"`
	ResumeKeywords  []string   `json:"resumeKeywords"`
	Analysis        string     `json:"analysis"`
	Verdict         ai.Verdict `json:"verdict"`
	KeyStrength     string     `json:"keyStrength,omitempty"`
}

func newAnalyzeResponse(r ats.Result) analyzeResponse {
	return analyzeResponse{
		Score:           r.Score,
		MatchedKeywords: r.MatchedSkills,
		MissingKeywords: r.MissingSkills,
		ResumeKeywords:  r.ResumeSkills,
		Analysis:        r.Analysis,
		Verdict:         r.Verdict,
		KeyStrength:     r.KeyStrength,
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "DevHire API is running", "version": s.cfg.Version})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "semantic": s.analyzer.SemanticEnabled()})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": msgTooLarge})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	header, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": msgTooLarge})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequired})
		return
	}

	description := c.PostForm("jobDescription")
	if strings.TrimSpace(description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgRequired})
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not read the uploaded resume"})
		return
	}
	defer file.Close()

	doc := extract.Document{
		Name:   header.Filename,
		MIME:   header.Header.Get("Content-Type"),
		Reader: file,
	}

	result := s.analyzer.Score(c.Request.Context(), doc, ats.JobText(description, c.PostFormArray("requirements")...))

	s.logger.Info("resume analyzed",
		logger.RequestID(c.GetString(requestIDKey)),
		zap.String("file", header.Filename),
		zap.Int64("size", header.Size),
		zap.Int("score", result.Score),
		zap.String("verdict", string(result.Verdict)),
		logger.Outcome(result.Semantic),
	)

	c.JSON(http.StatusOK, newAnalyzeResponse(result))
}
