package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/complaintdesk/internal/server/services"
	"github.com/dmitrijs2005/complaintdesk/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) homePage(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", page{Title: "File a complaint"})
}

func (h *Handler) submitComplaint(c *gin.Context) {
	if h.opts.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize)
	}

	var attachment *services.Attachment

	fh, err := c.FormFile("uploaded_file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			h.logger.Error(c.Request.Context(), "open upload failed", "error", err)
			h.render(c, http.StatusInternalServerError, "home.html", page{Title: "File a complaint", Error: msgInternal})
			return
		}
		defer f.Close()
		attachment = &services.Attachment{Filename: fh.Filename, Content: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.render(c, http.StatusRequestEntityTooLarge, "home.html", page{Title: "File a complaint", Error: msgUploadTooLarge})
			return
		}
		h.render(c, http.StatusBadRequest, "home.html", page{Title: "File a complaint", Error: msgInvalidFormInput})
		return
	}

	form := formValues{
		Name:     c.PostForm("user_name"),
		Email:    c.PostForm("user_email"),
		Location: c.PostForm("user_location"),
		Message:  c.PostForm("user_message"),
	}

	_, err = h.complaints.Submit(c.Request.Context(), services.ComplaintInput{
		Name:       form.Name,
		Email:      form.Email,
		Location:   form.Location,
		Message:    form.Message,
		Attachment: attachment,
	})
	if err != nil {
		status, msg, known := statusFor(err)
		if !known {
			h.logger.Error(c.Request.Context(), "submit complaint failed", "error", err)
		}
		h.render(c, status, "home.html", page{Title: "File a complaint", Error: msg, Form: form})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) adminPage(c *gin.Context) {
	s := c.MustGet(ctxSessionKey).(*sessions.Session)

	views, err := h.complaints.List(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "list complaints failed", "error", err)
		c.String(http.StatusInternalServerError, msgInternal)
		return
	}

	c.Header("Cache-Control", "no-store")
	h.render(c, http.StatusOK, "admin.html", page{Title: "Admin", Session: s, Complaints: views})
}

func (h *Handler) listComplaints(c *gin.Context) {
	views, err := h.complaints.List(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "list complaints failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaints": views})
}
