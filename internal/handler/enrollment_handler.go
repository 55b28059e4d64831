package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-enrollment-roster/internal/dto"
	"github.com/noah-isme/sma-enrollment-roster/internal/service"
	appErrors "github.com/noah-isme/sma-enrollment-roster/pkg/errors"
	"github.com/noah-isme/sma-enrollment-roster/pkg/response"
)

type sessionService interface {
	Create() *service.Session
	Get(id string) (*service.Session, error)
	End(id string) error
	ExpiresAt(session *service.Session) time.Time
}

type rosterExporter interface {
	Export(roster service.RosterSource, format string) (*service.ExportFile, error)
}

// EnrollmentHandler exposes the enrollment form and the session roster.
type EnrollmentHandler struct {
	sessions sessionService
	exports  rosterExporter
}

// NewEnrollmentHandler constructs EnrollmentHandler. exports may be nil when
// downloads are disabled.
func NewEnrollmentHandler(sessions sessionService, exports rosterExporter) *EnrollmentHandler {
	return &EnrollmentHandler{sessions: sessions, exports: exports}
}

// Register mounts the session routes on rg.
func (h *EnrollmentHandler) Register(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	sessions.POST("", h.OpenSession)
	sessions.DELETE("/:id", h.EndSession)
	sessions.GET("/:id/form", h.GetForm)
	sessions.PATCH("/:id/form", h.ChangeForm)
	sessions.DELETE("/:id/form", h.ClearForm)
	sessions.POST("/:id/form/submit", h.SubmitForm)
	sessions.GET("/:id/students", h.ListStudents)
	sessions.GET("/:id/stats", h.Stats)
	if h.exports != nil {
		sessions.GET("/:id/students/export", h.ExportStudents)
	}
}

// OpenSession godoc
// @Summary Open a roster session
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *EnrollmentHandler) OpenSession(c *gin.Context) {
	session := h.sessions.Create()
	response.Created(c, h.sessionResponse(session))
}

// EndSession godoc
// @Summary End a roster session and discard its roster
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *EnrollmentHandler) EndSession(c *gin.Context) {
	if err := h.sessions.End(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetForm godoc
// @Summary Current enrollment form state
// @Tags Enrollment Form
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/form [get]
func (h *EnrollmentHandler) GetForm(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session.Form.Snapshot())
}

// ChangeForm godoc
// @Summary Edit enrollment form fields
// @Tags Enrollment Form
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.FormChangeRequest true "Field values keyed by field name"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/form [patch]
func (h *EnrollmentHandler) ChangeForm(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.FormChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := session.Form.ChangeMany(req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session.Form.Snapshot())
}

// ClearForm godoc
// @Summary Reset the enrollment form to its defaults
// @Tags Enrollment Form
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/form [delete]
func (h *EnrollmentHandler) ClearForm(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.Form.Reset(); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session.Form.Snapshot())
}

// SubmitForm godoc
// @Summary Submit the enrollment form
// @Tags Enrollment Form
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/form/submit [post]
func (h *EnrollmentHandler) SubmitForm(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	record, err := session.Form.Submit(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, record, map[string]interface{}{
		"message": "Student added successfully!",
	})
}

// ListStudents godoc
// @Summary Session roster, newest first
// @Tags Roster
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/students [get]
func (h *EnrollmentHandler) ListStudents(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	students := session.Roster.All()
	response.JSON(c, http.StatusOK, dto.RosterResponse{Students: students, Total: len(students)})
}

// Stats godoc
// @Summary Roster statistics
// @Tags Roster
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/stats [get]
func (h *EnrollmentHandler) Stats(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, dto.NewStatsResponse(session.Roster.Stats()))
}

// ExportStudents godoc
// @Summary Download the roster as CSV or PDF
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /sessions/{id}/students/export [get]
func (h *EnrollmentHandler) ExportStudents(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	file, err := h.exports.Export(session.Roster, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *EnrollmentHandler) session(c *gin.Context) (*service.Session, bool) {
	session, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return session, true
}

func (h *EnrollmentHandler) sessionResponse(session *service.Session) dto.SessionResponse {
	resp := dto.SessionResponse{ID: session.ID, CreatedAt: session.CreatedAt}
	if expires := h.sessions.ExpiresAt(session); !expires.IsZero() {
		resp.ExpiresAt = &expires
	}
	return resp
}
