package controllers

import (
	"net/http"
	"strconv"

	"punchme/web/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AwardPoint(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "code is required")
		return
	}

	res, err := h.svc.AwardPoint(c.Request.Context(), middleware.CurrentCustomer(c).ID, body.Code)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Point awarded.",
		"restaurant_id": res.RestaurantID,
		"points":        res.Points,
	})
}

func (h *Handler) GenerateQR(c *gin.Context) {
	qr, err := h.svc.GenerateQR(c.Request.Context(), middleware.CurrentManager(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, qr)
}

func (h *Handler) GetQR(c *gin.Context) {
	qr, err := h.svc.CurrentQR(c.Request.Context(), middleware.CurrentManager(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, qr)
}

// QRImage serves the current QR as PNG; ?size= sets the edge in pixels.
func (h *Handler) QRImage(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := h.svc.QRImage(c.Request.Context(), middleware.CurrentManager(c).ID, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) SendPoint(c *gin.Context) {
	var body struct {
		PhoneNumber  string `json:"phone_number" binding:"required"`
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "phone_number and restaurant_id are required")
		return
	}

	_, err := h.svc.GiftPoint(c.Request.Context(), middleware.CurrentCustomer(c).ID, body.PhoneNumber, body.RestaurantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Point sent."})
}

func (h *Handler) CustomerPoints(c *gin.Context) {
	entries, err := h.svc.CustomerPointsList(c.Request.Context(), middleware.CurrentCustomer(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(entries, pointsJSON))
}

func (h *Handler) RestaurantPoints(c *gin.Context) {
	entries, err := h.svc.RestaurantPointsList(c.Request.Context(), middleware.CurrentManager(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(entries, pointsJSON))
}

func (h *Handler) PointHistory(c *gin.Context) {
	events, err := h.svc.PointHistory(c.Request.Context(), middleware.CurrentManager(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(events, eventJSON))
}
