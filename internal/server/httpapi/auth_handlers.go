package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/server/services"
	"github.com/dmitrijs2005/complaintdesk/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) signupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", page{Title: "Sign up"})
}

func (h *Handler) signup(c *gin.Context) {
	form := formValues{
		Name:  c.PostForm("user_name"),
		Email: c.PostForm("user_email"),
	}

	_, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		DisplayName:          form.Name,
		Email:                form.Email,
		Password:             c.PostForm("user_pwd1"),
		PasswordConfirmation: c.PostForm("user_pwd2"),
	})
	if err != nil {
		status, msg, known := statusFor(err)
		if !known {
			h.logger.Error(c.Request.Context(), "signup failed", "error", err)
		}
		h.render(c, status, "signup.html", page{Title: "Sign up", Error: msg, Form: form})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", page{Title: "Log in"})
}

func (h *Handler) login(c *gin.Context) {
	res, err := h.auth.Login(c.Request.Context(), services.LoginInput{
		ClientAddr: c.ClientIP(),
		Email:      c.PostForm("user_email"),
		Password:   c.PostForm("user_pwd"),
	})
	if err != nil {
		var rl *services.RateLimitedError
		if errors.As(err, &rl) {
			setRetryAfter(c, rl.RetryAfter)
		}

		status, msg, known := statusFor(err)
		if !known {
			h.logger.Error(c.Request.Context(), "login failed", "error", err)
		}
		// the form is not echoed so both failure causes render identically
		h.render(c, status, "login.html", page{Title: "Log in", Error: msg})
		return
	}

	sessions.SetCookie(c.Writer, common.SessionCookieName, res.Session.ID, res.Session.ExpiresAt, h.cookies)
	sessions.SetCookie(c.Writer, common.TokenCookieName, res.Token, res.TokenExpiresAt, h.cookies)

	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) logout(c *gin.Context) {
	if sid, err := c.Cookie(common.SessionCookieName); err == nil {
		if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
			h.logger.Error(c.Request.Context(), "logout failed", "error", err)
		}
	}

	sessions.ClearCookie(c.Writer, common.SessionCookieName, h.cookies)
	sessions.ClearCookie(c.Writer, common.TokenCookieName, h.cookies)

	c.Redirect(http.StatusFound, "/login")
}
