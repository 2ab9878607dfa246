package controllers

import (
	"net/http"

	"punchme/web/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateRedemption(c *gin.Context) {
	var body struct {
		ItemID uint `json:"item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "item_id is required")
		return
	}

	red, err := h.svc.CreateRedemption(c.Request.Context(), middleware.CurrentCustomer(c).ID, body.ItemID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, redemptionJSON(red))
}

func (h *Handler) ValidateRedemption(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "code is required")
		return
	}

	res, err := h.svc.ValidateRedemption(c.Request.Context(), middleware.CurrentManager(c).ID, body.Code)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Redemption validated.",
		"customer_id": res.Redemption.CustomerID,
		"item":        itemJSON(&res.Item),
		"points":      res.Points,
	})
}

func (h *Handler) DeleteRedemption(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRedemption(c.Request.Context(), middleware.CurrentCustomer(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListRedemptions(c *gin.Context) {
	reds, err := h.svc.ListRedemptions(c.Request.Context(), middleware.CurrentCustomer(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(reds, redemptionJSON))
}
