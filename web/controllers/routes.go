package controllers

import (
	"punchme/web/db"
	"punchme/web/middleware"

	"github.com/gin-gonic/gin"
)

// Register mounts every route on r. authed must resolve the caller (see
// middleware.RequireAuth) and limit throttles the unauthenticated code routes.
func Register(r gin.IRouter, h *Handler, authed, limit gin.HandlerFunc) {
	r.GET("/health", Health)

	r.POST("/send-phone-code/", limit, h.SendCode(db.PhoneCode))
	r.PATCH("/register-verify-phone-code/", limit, h.RegisterVerify(db.PhoneCode))
	r.PATCH("/login-verify-phone-code/", limit, h.LoginVerify(db.PhoneCode))
	r.POST("/send-email-code/", limit, h.SendCode(db.EmailCode))
	r.PATCH("/register-verify-email-code/", limit, h.RegisterVerify(db.EmailCode))
	r.PATCH("/login-verify-email-code/", limit, h.LoginVerify(db.EmailCode))

	anyone := r.Group("/", authed)
	anyone.GET("/get-restaurants", h.ListRestaurants)
	anyone.GET("/get-restaurant/:restaurant_id", h.GetRestaurant)
	anyone.GET("/get-items/:restaurant_id", h.ListItems)

	customer := r.Group("/", authed, middleware.RequireCustomer)
	customer.PATCH("/award-point/", h.AwardPoint)
	customer.POST("/send-point/", h.SendPoint)
	customer.POST("/create-redemption/", h.CreateRedemption)
	customer.DELETE("/delete-redemption/:id", h.DeleteRedemption)
	customer.GET("/get-redemptions", h.ListRedemptions)
	customer.POST("/add-friend/", h.AddFriend)
	customer.GET("/get-friends", h.ListFriends)
	customer.DELETE("/remove-friend/:id", h.RemoveFriend)
	customer.POST("/create-referral/", h.CreateReferral)
	customer.PATCH("/use-referral/", h.UseReferral)
	customer.GET("/get-customer", h.GetCustomer)
	customer.PATCH("/update-customer/", h.UpdateCustomer)
	customer.GET("/get-customer-points-list", h.CustomerPoints)

	manager := r.Group("/", authed, middleware.RequireManager)
	manager.PATCH("/generate-qr/", h.GenerateQR)
	manager.GET("/get-qr/", h.GetQR)
	manager.GET("/qr-image/", h.QRImage)
	manager.PATCH("/validate-redemption/", h.ValidateRedemption)
	manager.GET("/get-manager", h.GetManager)
	manager.GET("/get-customer-points-manager-view", h.RestaurantPoints)
	manager.GET("/get-point-history", h.PointHistory)
	manager.POST("/create-restaurant/", h.CreateRestaurant)
	manager.PATCH("/update-restaurant/", h.UpdateRestaurant)
	manager.POST("/create-item/", h.CreateItem)
	manager.PATCH("/update-item/:id", h.UpdateItem)
	manager.DELETE("/delete-item/:id", h.DeleteItem)
}
