package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"report-service/internal/http/middleware"
	"report-service/internal/model"
	"report-service/internal/service"
)

func (h *Handler) me(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}
	c.JSON(http.StatusOK, successResponse(principal))
}

func parseFilter(c *gin.Context) service.Filter {
	return service.Filter{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
}

func (h *Handler) listReports(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	result, err := h.triage.List(c.Request.Context(), principal, parseFilter(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}

func (h *Handler) exportReports(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var buf bytes.Buffer
	if err := h.triage.Export(c.Request.Context(), principal, parseFilter(c), &buf); err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("laporan-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) getReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	details, err := h.triage.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(details))
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,report_status"`
	Notes  string `json:"notes"`
}

func (h *Handler) updateReportStatus(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	status, _ := model.ParseReportStatus(req.Status)

	report, err := h.triage.UpdateStatus(c.Request.Context(), principal, id, status, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(report))
}

type assignmentRequest struct {
	Priority   *string `json:"priority" binding:"omitempty,priority"`
	AssignedTo *string `json:"assigned_to"`
}

func (h *Handler) updateReportAssignment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req assignmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var priority *model.Priority
	if req.Priority != nil {
		p, _ := model.ParsePriority(*req.Priority)
		priority = &p
	}

	report, err := h.triage.Assign(c.Request.Context(), principal, id, priority, req.AssignedTo)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) dashboard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	snapshot, err := h.triage.Dashboard(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(snapshot))
}

func (h *Handler) getSettings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(settings))
}

type updateSettingsRequest struct {
	WhatsappNotifications bool   `json:"whatsapp_notifications"`
	EmailNotifications    bool   `json:"email_notifications"`
	SMSNotifications      bool   `json:"sms_notifications"`
	EmergencyPhone        string `json:"emergency_phone"`
	AdminEmail            string `json:"admin_email" binding:"required,email"`
	WhatsappNumber        string `json:"whatsapp_number"`
	Templates             struct {
		NewReport    string `json:"new_report"`
		StatusUpdate string `json:"status_update"`
	} `json:"templates"`
	AutoLogout            bool `json:"auto_logout"`
	SessionTimeoutMinutes int  `json:"session_timeout_minutes"`
	RequirePasswordChange bool `json:"require_password_change"`
}

func (h *Handler) updateSettings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req updateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), principal, service.UpdateSettingsInput{
		WhatsappNotifications: req.WhatsappNotifications,
		EmailNotifications:    req.EmailNotifications,
		SMSNotifications:      req.SMSNotifications,
		EmergencyPhone:        req.EmergencyPhone,
		AdminEmail:            req.AdminEmail,
		WhatsappNumber:        req.WhatsappNumber,
		NewReportTemplate:     req.Templates.NewReport,
		StatusUpdateTemplate:  req.Templates.StatusUpdate,
		AutoLogout:            req.AutoLogout,
		SessionTimeoutMinutes: req.SessionTimeoutMinutes,
		RequirePasswordChange: req.RequirePasswordChange,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(settings))
}
