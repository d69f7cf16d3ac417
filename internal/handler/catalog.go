package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"memberportal/internal/calendar"
	"memberportal/internal/gallery"
	"memberportal/internal/merch"
)

// --- calendar ---

// ListCalendar returns every calendar event. Anyone signed in can read
// the calendar.
func (h *Handler) ListCalendar(c *gin.Context) {
	events, err := h.calendar.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type calendarRequest struct {
	Title       string    `json:"title" binding:"required"`
	Start       time.Time `json:"start" binding:"required"`
	End         time.Time `json:"end" binding:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// CreateCalendarEvent adds an event to the calendar.
func (h *Handler) CreateCalendarEvent(c *gin.Context) {
	var req calendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	evt, err := h.calendar.Create(c.Request.Context(), actor(c), calendar.Event{
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, evt)
}

// UpdateCalendarEvent edits an existing calendar event.
func (h *Handler) UpdateCalendarEvent(c *gin.Context) {
	var req calendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	evt, err := h.calendar.Update(c.Request.Context(), actor(c), calendar.Event{
		ID:          c.Param("id"),
		Title:       req.Title,
		Start:       req.Start,
		End:         req.End,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, evt)
}

// DeleteCalendarEvent removes a calendar event.
func (h *Handler) DeleteCalendarEvent(c *gin.Context) {
	if err := h.calendar.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// --- gallery ---

// ListGallery returns gallery entries, newest first.
func (h *Handler) ListGallery(c *gin.Context) {
	entries, err := h.gallery.List(c.Request.Context(), actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// CreateGalleryEntry adds a gallery entry. Google Drive sharing links are
// normalized to their direct-view form.
func (h *Handler) CreateGalleryEntry(c *gin.Context) {
	var req struct {
		Title       string    `json:"title" binding:"required"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		ImageURL    string    `json:"imageUrl"`
		DriveLink   string    `json:"driveLink"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}
	entry, err := h.gallery.Create(c.Request.Context(), actor(c), gallery.Entry{
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		DriveLink:   req.DriveLink,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UploadGalleryImage pushes an uploaded image to Cloudinary and returns
// the hosted URL for use in a gallery entry.
func (h *Handler) UploadGalleryImage(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image upload"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, err)
		return
	}
	result, err := h.cloud.UploadBytes(data, fileHeader.Filename)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": result.SecureURL, "publicId": result.PublicID})
}

// DeleteGalleryEntry removes a gallery entry.
func (h *Handler) DeleteGalleryEntry(c *gin.Context) {
	if err := h.gallery.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// --- merch catalog ---

// ListMerch returns the catalog.
func (h *Handler) ListMerch(c *gin.Context) {
	items, err := h.merch.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateMerchItem adds a catalog item.
func (h *Handler) CreateMerchItem(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		Description string   `json:"description"`
		Price       float64  `json:"price"`
		ImageURL    string   `json:"imageUrl"`
		Sizes       []string `json:"sizes"`
		Stock       int      `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.merch.Create(c.Request.Context(), actor(c), merch.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Sizes:       req.Sizes,
		Stock:       req.Stock,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DeleteMerchItem removes a catalog item and drops it from every cart.
func (h *Handler) DeleteMerchItem(c *gin.Context) {
	id := c.Param("id")
	if err := h.merch.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	h.carts.DropItem(id)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// --- cart ---

func cartResponse(cart merch.Cart) gin.H {
	return gin.H{"lines": cart.Lines, "subtotal": cart.Subtotal()}
}

// GetCart returns the caller's cart.
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartResponse(h.carts.Snapshot(actor(c).ID)))
}

// AddToCart adds one unit of an item in a size, incrementing an existing
// line for the same pair.
func (h *Handler) AddToCart(c *gin.Context) {
	var req struct {
		ItemID string `json:"itemId" binding:"required"`
		Size   string `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.merch.Get(c.Request.Context(), req.ItemID)
	if err != nil {
		fail(c, err)
		return
	}
	cart := h.carts.Mutate(actor(c).ID, func(cart *merch.Cart) {
		cart.Add(*item, req.Size)
	})
	c.JSON(http.StatusOK, cartResponse(cart))
}

// SetCartQuantity sets the quantity on a cart line. Anything below one
// removes the line.
func (h *Handler) SetCartQuantity(c *gin.Context) {
	var req struct {
		ItemID   string `json:"itemId" binding:"required"`
		Size     string `json:"size"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart := h.carts.Mutate(actor(c).ID, func(cart *merch.Cart) {
		cart.SetQuantity(req.ItemID, req.Size, req.Quantity)
	})
	c.JSON(http.StatusOK, cartResponse(cart))
}

// Checkout is not wired to a payment processor yet.
func (h *Handler) Checkout(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "checkout is not available yet"})
}
