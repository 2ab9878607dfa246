package controllers

import (
	"net/http"

	"punchme/web/db"
	"punchme/web/rewards"

	"github.com/gin-gonic/gin"
)

type sendCodeBody struct {
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	IsRegister  bool   `json:"is_register"`
}

type verifyCodeBody struct {
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Code        string `json:"code" binding:"required"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

func identifier(kind db.CodeKind, phone, email string) string {
	if kind == db.PhoneCode {
		return phone
	}
	return email
}

// SendCode handles /send-phone-code/ and /send-email-code/.
func (h *Handler) SendCode(kind db.CodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body sendCodeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Failed to read body")
			return
		}

		err := h.svc.SendCode(c.Request.Context(), kind, identifier(kind, body.PhoneNumber, body.Email), body.IsRegister)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Verification code sent."})
	}
}

func sessionJSON(s *rewards.Session) gin.H {
	out := gin.H{"token": s.Token}
	if s.Customer != nil {
		out["customer"] = customerJSON(s.Customer)
	}
	if s.Manager != nil {
		out["manager"] = managerJSON(s.Manager)
	}
	return out
}

func (h *Handler) RegisterVerify(kind db.CodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body verifyCodeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Failed to read body")
			return
		}

		profile := rewards.Profile{FirstName: body.FirstName, LastName: body.LastName}
		if kind == db.PhoneCode {
			profile.Email = body.Email
		}
		sess, err := h.svc.VerifyAndRegister(c.Request.Context(), kind, identifier(kind, body.PhoneNumber, body.Email), body.Code, profile)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, sessionJSON(sess))
	}
}

func (h *Handler) LoginVerify(kind db.CodeKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body verifyCodeBody
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "Failed to read body")
			return
		}

		sess, err := h.svc.VerifyAndLogin(c.Request.Context(), kind, identifier(kind, body.PhoneNumber, body.Email), body.Code)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionJSON(sess))
	}
}
