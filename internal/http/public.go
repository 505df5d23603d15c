package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"report-service/internal/service"
)

type submitReportRequest struct {
	Consent                 bool    `json:"consent"`
	ViolenceType            string  `json:"violence_type" binding:"omitempty,violence_type"`
	IncidentDate            string  `json:"incident_date"`
	IncidentTime            string  `json:"incident_time"`
	Location                string  `json:"location"`
	Description             string  `json:"description"`
	Impact                  *string `json:"impact"`
	VictimName              string  `json:"victim_name"`
	VictimAge               *int    `json:"victim_age"`
	VictimGender            *string `json:"victim_gender"`
	VictimPhone             *string `json:"victim_phone"`
	VictimEmail             *string `json:"victim_email"`
	PerpetratorName         *string `json:"perpetrator_name"`
	PerpetratorRelationship *string `json:"perpetrator_relationship"`
	WitnessName             *string `json:"witness_name"`
	WitnessContact          *string `json:"witness_contact"`
	IsAnonymous             bool    `json:"is_anonymous"`
	ReporterName            *string `json:"reporter_name"`
	ReporterPhone           *string `json:"reporter_phone"`
	ReporterEmail           *string `json:"reporter_email"`
	ReporterRelationship    *string `json:"reporter_relationship"`
}

func (r submitReportRequest) input() service.SubmissionInput {
	return service.SubmissionInput{
		Consent:                 r.Consent,
		ViolenceType:            r.ViolenceType,
		IncidentDate:            r.IncidentDate,
		IncidentTime:            r.IncidentTime,
		Location:                r.Location,
		Description:             r.Description,
		Impact:                  r.Impact,
		VictimName:              r.VictimName,
		VictimAge:               r.VictimAge,
		VictimGender:            r.VictimGender,
		VictimPhone:             r.VictimPhone,
		VictimEmail:             r.VictimEmail,
		PerpetratorName:         r.PerpetratorName,
		PerpetratorRelationship: r.PerpetratorRelationship,
		WitnessName:             r.WitnessName,
		WitnessContact:          r.WitnessContact,
		IsAnonymous:             r.IsAnonymous,
		ReporterName:            r.ReporterName,
		ReporterPhone:           r.ReporterPhone,
		ReporterEmail:           r.ReporterEmail,
		ReporterRelationship:    r.ReporterRelationship,
	}
}

func (h *Handler) submitReport(c *gin.Context) {
	var req submitReportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	receipt, err := h.submission.Submit(c.Request.Context(), req.input())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(receipt))
}

// lookupStatus answers the public status page. Its messages are shown to the
// reporter verbatim.
func (h *Handler) lookupStatus(c *gin.Context) {
	ticket := c.Param("ticket")
	if ticket == "" {
		ticket = c.Query("ticket")
	}

	view, err := h.lookup.Lookup(c.Request.Context(), ticket)
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, fieldErrorResponse(vErr.Field, vErr.Message))
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, errorResponse(service.MsgTicketNotFound))
		default:
			h.log.Error().Err(err).Msg("status lookup failed")
			c.JSON(http.StatusInternalServerError, errorResponse(service.MsgLookupFailed))
		}
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) contact(c *gin.Context) {
	info, err := h.settings.Contact(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(info))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(result))
}
