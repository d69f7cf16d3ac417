// Package handler wires the portal's services to gin routes.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"memberportal/internal/auth"
	"memberportal/internal/calendar"
	"memberportal/internal/checkin"
	"memberportal/internal/cloudinary"
	"memberportal/internal/gallery"
	"memberportal/internal/merch"
	"memberportal/internal/roster"
)

// Handler holds the services behind the authenticated API.
type Handler struct {
	auth     *auth.Service
	roster   *roster.Service
	checkin  *checkin.Service
	calendar *calendar.Service
	gallery  *gallery.Service
	merch    *merch.Service
	carts    *merch.CartStore
	cloud    *cloudinary.Client // nil if Cloudinary not configured
}

// New creates a handler.
func New(authSvc *auth.Service, rosterSvc *roster.Service, checkinSvc *checkin.Service, calendarSvc *calendar.Service, gallerySvc *gallery.Service, merchSvc *merch.Service, carts *merch.CartStore, cloud *cloudinary.Client) *Handler {
	return &Handler{
		auth:     authSvc,
		roster:   rosterSvc,
		checkin:  checkinSvc,
		calendar: calendarSvc,
		gallery:  gallerySvc,
		merch:    merchSvc,
		carts:    carts,
		cloud:    cloud,
	}
}

// fail maps domain errors to HTTP statuses. Unknown errors are logged and
// surfaced as a generic message so callers never see internals.
func fail(c *gin.Context, err error) {
	type coded struct {
		status int
		errs   []error
	}
	table := []coded{
		{http.StatusBadRequest, []error{
			roster.ErrInvalidCWID, roster.ErrInvalidRole, roster.ErrInvalidClass,
			roster.ErrBadImportFile,
			checkin.ErrNameRequired, calendar.ErrDatesOutOfOrder, calendar.ErrTitleRequired,
			gallery.ErrTitleRequired, merch.ErrNameRequired, merch.ErrInvalidPrice,
			auth.ErrPasswordMismatch, auth.ErrWeakPassword, auth.ErrCaptchaRequired,
			auth.ErrInvalidResetToken,
		}},
		{http.StatusUnauthorized, []error{auth.ErrInvalidCredentials}},
		{http.StatusForbidden, []error{
			roster.ErrEditForbidden, roster.ErrAssignForbidden, roster.ErrPermissionDenied,
			checkin.ErrPermissionDenied, calendar.ErrPermissionDenied,
			gallery.ErrPermissionDenied, merch.ErrPermissionDenied,
		}},
		{http.StatusNotFound, []error{
			roster.ErrNotFound, checkin.ErrEventNotFound, calendar.ErrNotFound,
			gallery.ErrNotFound, merch.ErrNotFound,
		}},
		{http.StatusConflict, []error{auth.ErrEmailTaken, checkin.ErrAlreadyCheckedIn}},
	}
	for _, entry := range table {
		for _, known := range entry.errs {
			if errors.Is(err, known) {
				c.JSON(entry.status, gin.H{"error": err.Error()})
				return
			}
		}
	}
	log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed, please try again"})
}

// actor returns the authenticated profile set by the auth middleware.
func actor(c *gin.Context) roster.Profile {
	p, _ := auth.CurrentProfile(c)
	return p
}
