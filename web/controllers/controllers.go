package controllers

import (
	"net/http"
	"strconv"
	"time"

	"punchme/web/db"
	"punchme/web/logs"
	"punchme/web/rewards"

	"github.com/gin-gonic/gin"
)

// Handler exposes the rewards service over HTTP.
type Handler struct {
	svc *rewards.Service
}

func New(svc *rewards.Service) *Handler {
	return &Handler{svc: svc}
}

// fail writes err as {"error": msg}. Internal errors are logged and hidden.
func fail(c *gin.Context, err error) {
	status := rewards.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logs.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": rewards.Message(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name+".")
		return 0, false
	}
	return uint(id), true
}

func customerJSON(cu *db.Customer) gin.H {
	return gin.H{
		"id":           cu.ID,
		"first_name":   cu.FirstName,
		"last_name":    cu.LastName,
		"email":        cu.Email,
		"phone_number": cu.PhoneNumber,
	}
}

func managerJSON(m *db.Manager) gin.H {
	return gin.H{
		"id":         m.ID,
		"first_name": m.FirstName,
		"last_name":  m.LastName,
		"email":      m.Email,
	}
}

func restaurantJSON(r *db.Restaurant) gin.H {
	return gin.H{
		"id":         r.ID,
		"name":       r.Name,
		"address":    r.Address,
		"manager_id": r.ManagerID,
	}
}

func itemJSON(it *db.Item) gin.H {
	return gin.H{
		"id":            it.ID,
		"restaurant_id": it.RestaurantID,
		"name":          it.Name,
		"description":   it.Description,
		"points":        it.Points,
	}
}

func pointsJSON(p *db.CustomerPoints) gin.H {
	out := gin.H{
		"customer_id":   p.CustomerID,
		"restaurant_id": p.RestaurantID,
		"points":        p.Points,
		"gift_eligible": p.GiftEligible,
	}
	if p.LastAwardedAt != nil {
		out["last_awarded_at"] = p.LastAwardedAt.Format(time.RFC3339)
	}
	return out
}

func redemptionJSON(r *db.ItemRedemption) gin.H {
	return gin.H{
		"id":          r.ID,
		"customer_id": r.CustomerID,
		"item_id":     r.ItemID,
		"code":        r.Code,
		"created_at":  r.CreatedAt.Format(time.RFC3339),
	}
}

func eventJSON(e *db.PointEvent) gin.H {
	return gin.H{
		"customer_id":   e.CustomerID,
		"restaurant_id": e.RestaurantID,
		"delta":         e.Delta,
		"reason":        e.Reason,
		"created_at":    e.CreatedAt.Format(time.RFC3339),
	}
}

// list renders every element of in with view.
func list[T any](in []T, view func(*T) gin.H) []gin.H {
	out := make([]gin.H, 0, len(in))
	for i := range in {
		out = append(out, view(&in[i]))
	}
	return out
}
