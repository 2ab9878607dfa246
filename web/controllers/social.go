package controllers

import (
	"net/http"

	"punchme/web/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddFriend(c *gin.Context) {
	var body struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "phone_number is required")
		return
	}

	friend, err := h.svc.AddFriend(c.Request.Context(), middleware.CurrentCustomer(c).ID, body.PhoneNumber)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, customerJSON(friend))
}

func (h *Handler) ListFriends(c *gin.Context) {
	friends, err := h.svc.ListFriends(c.Request.Context(), middleware.CurrentCustomer(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(friends, customerJSON))
}

func (h *Handler) RemoveFriend(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveFriend(c.Request.Context(), middleware.CurrentCustomer(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateReferral(c *gin.Context) {
	var body struct {
		PhoneNumber  string `json:"phone_number" binding:"required"`
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "phone_number and restaurant_id are required")
		return
	}

	ref, err := h.svc.CreateReferral(c.Request.Context(), middleware.CurrentCustomer(c).ID, body.RestaurantID, body.PhoneNumber)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"phone_number":  ref.PhoneNumber,
		"restaurant_id": ref.RestaurantID,
	})
}

func (h *Handler) UseReferral(c *gin.Context) {
	entry, err := h.svc.UseReferral(c.Request.Context(), middleware.CurrentCustomer(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pointsJSON(entry))
}
