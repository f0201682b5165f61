package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/gin-gonic/gin"
)

// User-facing messages. The login failure text is the same for unknown
// emails and wrong passwords.
const (
	msgPasswordsDiffer  = "Passwords do not match"
	msgEmailTaken       = "Email already exists. Please use a different email."
	msgInvalidLogin     = "Invalid email or password."
	msgTooManyAttempts  = "Too many login attempts from this IP, please try again after 5 minutes"
	msgMissingFields    = "Please fill in all required fields."
	msgImagesOnly       = "Only image uploads (PNG, JPEG, GIF, WebP, BMP) are accepted."
	msgUploadTooLarge   = "The uploaded file is too large."
	msgInternal         = "Internal Server Error"
	msgInvalidFormInput = "Invalid form submission."
)

// statusFor maps service errors to an HTTP status and message. ok is false
// for errors that are not part of the expected set; callers log those.
func statusFor(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, common.ErrPasswordMismatch):
		return http.StatusBadRequest, msgPasswordsDiffer, true
	case errors.Is(err, common.ErrEmailAlreadyRegistered), errors.Is(err, common.ErrDuplicateKey):
		return http.StatusConflict, msgEmailTaken, true
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, msgTooManyAttempts, true
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidLogin, true
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, msgMissingFields, true
	case errors.Is(err, common.ErrUnsupportedMedia):
		return http.StatusBadRequest, msgImagesOnly, true
	default:
		return http.StatusInternalServerError, msgInternal, false
	}
}

func isUnauthenticated(err error) bool {
	return errors.Is(err, common.ErrUnauthenticated)
}

// setRetryAfter writes the Retry-After header in whole seconds, rounded up.
func setRetryAfter(c *gin.Context, d time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
}
