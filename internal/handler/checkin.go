package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"memberportal/internal/checkin"
	"memberportal/internal/metrics"
	"memberportal/internal/roster"
)

// ListCheckinEvents lists all check-in events.
func (h *Handler) ListCheckinEvents(c *gin.Context) {
	events, err := h.checkin.Events(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateCheckinEvent opens a new event dated now.
func (h *Handler) CreateCheckinEvent(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	evt, err := h.checkin.CreateEvent(c.Request.Context(), actor(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, evt)
}

// DeleteCheckinEvent removes an event and its records.
func (h *Handler) DeleteCheckinEvent(c *gin.Context) {
	if err := h.checkin.DeleteEvent(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListCheckinRecords returns an event's records in check-in order.
func (h *Handler) ListCheckinRecords(c *gin.Context) {
	records, err := h.checkin.Records(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// CheckIn records an attendee from a card swipe or a typed CWID. When the
// student is not on the roster the response carries the extracted CWID so
// the client can prefill the registration form.
func (h *Handler) CheckIn(c *gin.Context) {
	var req struct {
		Input string `json:"input" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.checkin.CheckIn(c.Request.Context(), actor(c), c.Param("id"), req.Input)
	if err != nil {
		var unknown *checkin.UnknownStudentError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": err.Error(),
				"cwid":  unknown.CWID,
			})
			return
		}
		fail(c, err)
		return
	}
	kind := "non_member"
	if record.IsMember {
		kind = "member"
	}
	metrics.CheckIns.WithLabelValues(kind).Inc()
	c.JSON(http.StatusCreated, record)
}

// RegisterAndCheckIn creates a roster entry for an unknown student and
// checks them in in one step.
func (h *Handler) RegisterAndCheckIn(c *gin.Context) {
	var req struct {
		FirstName      string `json:"firstName" binding:"required"`
		LastName       string `json:"lastName" binding:"required"`
		CWID           string `json:"cwid" binding:"required"`
		Email          string `json:"email"`
		Classification string `json:"classification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.checkin.RegisterAndCheckIn(c.Request.Context(), actor(c), c.Param("id"), checkin.NewStudent{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		CWID:           req.CWID,
		Email:          req.Email,
		Classification: roster.Classification(req.Classification),
	})
	if err != nil {
		fail(c, err)
		return
	}
	metrics.CheckIns.WithLabelValues("new_student").Inc()
	c.JSON(http.StatusCreated, record)
}

// AddGuest records a walk-in guest by name.
func (h *Handler) AddGuest(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.checkin.AddGuest(c.Request.Context(), actor(c), c.Param("id"), req.Name, req.Note)
	if err != nil {
		fail(c, err)
		return
	}
	metrics.CheckIns.WithLabelValues("guest").Inc()
	c.JSON(http.StatusCreated, record)
}

// DeleteCheckinRecord removes a single attendance record.
func (h *Handler) DeleteCheckinRecord(c *gin.Context) {
	if err := h.checkin.DeleteRecord(c.Request.Context(), actor(c), c.Param("id"), c.Param("recordID")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CheckinSummary returns attendance totals for an event.
func (h *Handler) CheckinSummary(c *gin.Context) {
	records, err := h.checkin.Records(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, checkin.Summarize(records))
}

// ExportCheckinReport streams the event's attendance report as a PDF.
func (h *Handler) ExportCheckinReport(c *gin.Context) {
	ctx := c.Request.Context()
	who := actor(c)
	eventID := c.Param("id")

	evt, err := h.checkin.Event(ctx, who, eventID)
	if err != nil {
		fail(c, err)
		return
	}
	records, err := h.checkin.Records(ctx, who, eventID)
	if err != nil {
		fail(c, err)
		return
	}
	pdf, err := checkin.RenderReportPDF(evt, records)
	if err != nil {
		fail(c, err)
		return
	}
	metrics.ReportExports.Inc()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", evt.Name+"_checkin_report.pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
