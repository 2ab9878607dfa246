package controllers

import (
	"net/http"

	"punchme/web/middleware"
	"punchme/web/rewards"

	"github.com/gin-gonic/gin"
)

type restaurantBody struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type itemBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

func (h *Handler) GetCustomer(c *gin.Context) {
	c.JSON(http.StatusOK, customerJSON(middleware.CurrentCustomer(c)))
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Failed to read body")
		return
	}

	cu, err := h.svc.UpdateCustomer(c.Request.Context(), middleware.CurrentCustomer(c).ID,
		rewards.Profile{FirstName: body.FirstName, LastName: body.LastName, Email: body.Email})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customerJSON(cu))
}

func (h *Handler) GetManager(c *gin.Context) {
	c.JSON(http.StatusOK, managerJSON(middleware.CurrentManager(c)))
}

func (h *Handler) CreateRestaurant(c *gin.Context) {
	var body restaurantBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Failed to read body")
		return
	}

	r, err := h.svc.CreateRestaurant(c.Request.Context(), middleware.CurrentManager(c).ID,
		rewards.RestaurantInput{Name: body.Name, Address: body.Address})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, restaurantJSON(r))
}

func (h *Handler) UpdateRestaurant(c *gin.Context) {
	var body restaurantBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Failed to read body")
		return
	}

	r, err := h.svc.UpdateRestaurant(c.Request.Context(), middleware.CurrentManager(c).ID,
		rewards.RestaurantInput{Name: body.Name, Address: body.Address})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantJSON(r))
}

func (h *Handler) ListRestaurants(c *gin.Context) {
	rs, err := h.svc.ListRestaurants(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(rs, restaurantJSON))
}

func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	r, err := h.svc.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantJSON(r))
}

func (h *Handler) ListItems(c *gin.Context) {
	id, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	items, err := h.svc.ItemsByRestaurant(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list(items, itemJSON))
}

func (h *Handler) CreateItem(c *gin.Context) {
	var body itemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Failed to read body")
		return
	}

	it, err := h.svc.CreateItem(c.Request.Context(), middleware.CurrentManager(c).ID,
		rewards.ItemInput{Name: body.Name, Description: body.Description, Points: body.Points})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemJSON(it))
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body itemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Failed to read body")
		return
	}

	it, err := h.svc.UpdateItem(c.Request.Context(), middleware.CurrentManager(c).ID, id,
		rewards.ItemInput{Name: body.Name, Description: body.Description, Points: body.Points})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, itemJSON(it))
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), middleware.CurrentManager(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
