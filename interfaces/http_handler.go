package interfaces

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hiring-platform/domain"
	"hiring-platform/usecase"
)

const (
	actorKey       = "actor"
	maxResumeBytes = 10 << 20
)

type HTTPHandler struct {
	Applications *usecase.ApplicationUsecase
	Matching     *usecase.MatchingUsecase
	Dashboards   *usecase.DashboardUsecase
	Privacy      *usecase.PrivacyUsecase
	Logger       *zap.Logger
}

func NewHTTPHandler(router *gin.Engine, h *HTTPHandler) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/", ActorMiddleware())

	api.POST("/jobs/:id/applications", h.SubmitApplication)
	api.GET("/jobs/:id/applications", h.ListJobApplications)

	api.GET("/candidates/me/applications", h.ListApplications)
	api.GET("/candidates/me/recommendations", h.Recommendations)
	api.GET("/candidates/me/data", h.ExportData)
	api.DELETE("/candidates/me/data", h.EraseData)

	api.POST("/applications/:id/interview/next", h.NextQuestion)
	api.POST("/applications/:id/interview/answer", h.SubmitAnswer)
	api.POST("/applications/:id/interview/complete", h.CompleteInterview)
	api.GET("/applications/:id/interview", h.ListInterview)
	api.GET("/applications/:id/ai-data", h.GetAIData)
	api.GET("/applications/:id/bias", h.GetBias)

	api.GET("/recruiters/me/applications", h.ListRecruiterApplications)
	api.POST("/recruiters/me/dashboard", h.GenerateDashboard)
	api.GET("/recruiters/me/dashboard", h.ListDashboards)

	api.GET("/admin/audit-logs", h.AuditLogs)
}

// ActorMiddleware reads the identity forwarded by the auth gateway.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(strings.TrimSpace(c.GetHeader("X-Actor-ID")), 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-Actor-ID header"})
			return
		}
		role, err := domain.ParseRole(c.GetHeader("X-Actor-Role"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-Actor-Role header"})
			return
		}

		c.Set(actorKey, domain.Actor{
			ID:    uint(id),
			Email: strings.TrimSpace(c.GetHeader("X-Actor-Email")),
			Role:  role,
		})
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	actor, _ := c.MustGet(actorKey).(domain.Actor)
	return actor
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps domain errors onto HTTP status codes.
func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrStateViolation):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrGateway):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// SubmitApplication accepts the resume as multipart field "resume".
func (h *HTTPHandler) SubmitApplication(c *gin.Context) {
	jobID, ok := idParam(c)
	if !ok {
		return
	}

	header, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume is required"})
		return
	}
	if header.Size > maxResumeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("resume exceeds %d bytes", maxResumeBytes)})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open resume file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read resume file"})
		return
	}

	app, err := h.Applications.Submit(c.Request.Context(), actorFrom(c), usecase.SubmitApplicationInput{
		JobID:    jobID,
		FileName: header.Filename,
		Resume:   data,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *HTTPHandler) ListApplications(c *gin.Context) {
	apps, err := h.Applications.ListCandidateApplications(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *HTTPHandler) ListJobApplications(c *gin.Context) {
	jobID, ok := idParam(c)
	if !ok {
		return
	}
	apps, err := h.Applications.ListJobApplications(c.Request.Context(), actorFrom(c), jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *HTTPHandler) ListRecruiterApplications(c *gin.Context) {
	apps, err := h.Applications.ListRecruiterApplications(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *HTTPHandler) Recommendations(c *gin.Context) {
	recs, err := h.Matching.Recommend(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *HTTPHandler) NextQuestion(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	turn, err := h.Applications.NextQuestion(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (h *HTTPHandler) SubmitAnswer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Answer string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.Applications.SubmitAnswer(c.Request.Context(), actorFrom(c), id, req.Answer)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) CompleteInterview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	app, err := h.Applications.CompleteInterview(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *HTTPHandler) ListInterview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	responses, err := h.Applications.ListInterviewResponses(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

func (h *HTTPHandler) GetAIData(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	data, err := h.Applications.GetAIData(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *HTTPHandler) GetBias(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	bias, err := h.Applications.GetBias(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bias)
}

func (h *HTTPHandler) GenerateDashboard(c *gin.Context) {
	period, err := domain.ParsePeriod(c.Query("period"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	d, err := h.Dashboards.Generate(c.Request.Context(), actorFrom(c), period)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *HTTPHandler) ListDashboards(c *gin.Context) {
	rows, err := h.Dashboards.List(c.Request.Context(), actorFrom(c), c.Query("period"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *HTTPHandler) ExportData(c *gin.Context) {
	export, err := h.Privacy.ExportCandidateData(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, export)
}

func (h *HTTPHandler) EraseData(c *gin.Context) {
	if err := h.Privacy.EraseCandidateData(c.Request.Context(), actorFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) AuditLogs(c *gin.Context) {
	logs, err := h.Privacy.ListAuditLogs(c.Request.Context(), actorFrom(c), c.Query("email"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
