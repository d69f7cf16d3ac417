package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memberportal/internal/metrics"
	"memberportal/internal/roster"
)

// ListStudents returns the roster, optionally filtered.
func (h *Handler) ListStudents(c *gin.Context) {
	f := roster.Filters{
		Role:           c.Query("role"),
		Classification: c.Query("classification"),
		SearchTerm:     c.Query("search"),
		SearchType:     c.DefaultQuery("searchType", "basic"),
	}
	profiles, err := h.roster.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": profiles, "count": len(profiles)})
}

// GetStudent returns one profile by id.
func (h *Handler) GetStudent(c *gin.Context) {
	p, err := h.roster.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateStudent edits a roster entry.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var req struct {
		FirstName      string `json:"firstName" binding:"required"`
		LastName       string `json:"lastName" binding:"required"`
		Email          string `json:"email" binding:"required"`
		StudentID      string `json:"studentId"`
		Role           string `json:"role" binding:"required"`
		Classification string `json:"classification" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated := roster.Profile{
		ID:             c.Param("id"),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		StudentID:      req.StudentID,
		Role:           roster.Role(req.Role),
		Classification: roster.Classification(req.Classification),
	}
	saved, err := h.roster.Update(c.Request.Context(), actor(c), updated)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// AddStudent creates a roster entry from the manual-add form.
func (h *Handler) AddStudent(c *gin.Context) {
	var req struct {
		FirstName      string `json:"firstName" binding:"required"`
		LastName       string `json:"lastName" binding:"required"`
		StudentID      string `json:"studentId" binding:"required"`
		Email          string `json:"email"`
		Role           string `json:"role"`
		Classification string `json:"classification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := roster.Profile{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		StudentID:      req.StudentID,
		Email:          req.Email,
		Role:           roster.Role(req.Role),
		Classification: roster.Classification(req.Classification),
	}
	saved, err := h.roster.Add(c.Request.Context(), actor(c), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// ImportStudents ingests a CSV roster upload. Parsing errors abort the
// whole file before anything is written.
func (h *Handler) ImportStudents(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	result, err := h.roster.Import(c.Request.Context(), actor(c), f)
	if err != nil {
		fail(c, err)
		return
	}
	metrics.ImportedRows.Add(float64(result.Imported))
	c.JSON(http.StatusOK, result)
}

// BulkDeleteStudents removes a batch of profiles.
func (h *Handler) BulkDeleteStudents(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.roster.BulkDelete(c.Request.Context(), actor(c), req.IDs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.IDs)})
}
