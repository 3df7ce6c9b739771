package middleware

import (
	"net/http"

	"barbergate/config"
	"barbergate/internal/app/logger"
	"barbergate/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextBarbershop = "barbershop"
	ContextTenantSlug = "tenant_slug"
	ContextBasePath   = "base_path"
)

// TenantBySlug binds the request to the barbershop named by the :slug param.
// Everything downstream reads the tenant from the context and never
// re-resolves, so one request can never mix two tenants' data.
func TenantBySlug() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		shop, err := tenants.Default.BySlug(slug)
		if err != nil {
			logger.L().Error("tenant resolution failed", zap.String("slug", slug), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Could not load barbershop, please retry",
				"retry": true,
			})
			return
		}
		if shop == nil {
			// Not found is a valid outcome with a recovery path, never a blank page.
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":        "Barbershop not found",
				"slug":         slug,
				"register_url": config.APP_URL + "/cadastro",
			})
			return
		}

		bindTenant(c, shop)
		c.Next()
	}
}

// TenantOfficial binds the request to the official (default) barbershop,
// served at the unprefixed root paths.
func TenantOfficial() gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, err := tenants.Default.Official()
		if err != nil {
			logger.L().Error("official tenant resolution failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Could not load barbershop, please retry",
				"retry": true,
			})
			return
		}
		if shop == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":        "No official barbershop configured",
				"register_url": config.APP_URL + "/cadastro",
			})
			return
		}

		bindTenant(c, shop)
		c.Next()
	}
}

func bindTenant(c *gin.Context, shop *tenants.Barbershop) {
	c.Set(ContextBarbershop, shop)
	c.Set(ContextTenantSlug, shop.Slug)
	c.Set(ContextBasePath, shop.BasePath())
}

// MustBarbershop pulls the bound tenant out of the context.
func MustBarbershop(c *gin.Context) (*tenants.Barbershop, bool) {
	v, ok := c.Get(ContextBarbershop)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Tenant not resolved"})
		return nil, false
	}
	shop, ok := v.(*tenants.Barbershop)
	if !ok || shop == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Tenant not resolved"})
		return nil, false
	}
	return shop, true
}
