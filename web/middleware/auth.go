package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"punchme/web/auth"
	"punchme/web/db"

	"github.com/gin-gonic/gin"
)

const (
	customerKey = "customer"
	managerKey  = "manager"
)

type TokenParser interface {
	Parse(token string) (uint, auth.Role, error)
}

// Accounts loads the user a token refers to.
type Accounts interface {
	CustomerByID(ctx context.Context, id uint) (*db.Customer, error)
	ManagerByID(ctx context.Context, id uint) (*db.Manager, error)
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided or are invalid."})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	for _, scheme := range []string{"Bearer ", "Token "} {
		if token, ok := strings.CutPrefix(header, scheme); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// RequireAuth accepts a session token from the Authorization header and stores
// the customer or manager it belongs to in the context.
func RequireAuth(tokens TokenParser, accounts Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c)
			return
		}
		id, role, err := tokens.Parse(token)
		if err != nil {
			unauthorized(c)
			return
		}

		switch role {
		case auth.RoleCustomer:
			customer, err := accounts.CustomerByID(c.Request.Context(), id)
			if err != nil {
				abortLookup(c, err)
				return
			}
			c.Set(customerKey, customer)
		case auth.RoleManager:
			manager, err := accounts.ManagerByID(c.Request.Context(), id)
			if err != nil {
				abortLookup(c, err)
				return
			}
			c.Set(managerKey, manager)
		default:
			unauthorized(c)
			return
		}
		c.Next()
	}
}

func abortLookup(c *gin.Context, err error) {
	if errors.Is(err, db.ErrNotFound) {
		unauthorized(c)
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func RequireCustomer(c *gin.Context) {
	if CurrentCustomer(c) == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only customers can do this."})
		return
	}
	c.Next()
}

func RequireManager(c *gin.Context) {
	if CurrentManager(c) == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only managers can do this."})
		return
	}
	c.Next()
}

func CurrentCustomer(c *gin.Context) *db.Customer {
	v, _ := c.Get(customerKey)
	customer, _ := v.(*db.Customer)
	return customer
}

func CurrentManager(c *gin.Context) *db.Manager {
	v, _ := c.Get(managerKey)
	manager, _ := v.(*db.Manager)
	return manager
}
