package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barbergate/config"
	"barbergate/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func tenantTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&tenants.Barbershop{}))
	return db
}

func tenantRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	echo := func(c *gin.Context) {
		shop, ok := MustBarbershop(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"slug": shop.Slug, "base_path": c.GetString(ContextBasePath)})
	}
	r.GET("/b/:slug/info", TenantBySlug(), echo)
	r.GET("/info", TenantOfficial(), echo)
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestTenantBySlugBindsShop(t *testing.T) {
	db := tenantTestDB(t)
	require.NoError(t, db.Create(&tenants.Barbershop{Name: "Imperio Barber", Slug: "imperio-barber"}).Error)
	tenants.Default = tenants.NewResolver(db, time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/b/imperio-barber/info", nil)
	tenantRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "imperio-barber", body["slug"])
	require.Equal(t, "/b/imperio-barber", body["base_path"])
}

func TestTenantBySlugUnknownSlugReturns404WithRegisterURL(t *testing.T) {
	db := tenantTestDB(t)
	tenants.Default = tenants.NewResolver(db, time.Minute)
	config.APP_URL = "http://localhost:5173"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/b/no-such-shop/info", nil)
	tenantRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "Barbershop not found", body["error"])
	require.Equal(t, "no-such-shop", body["slug"])
	require.Equal(t, "http://localhost:5173/cadastro", body["register_url"])
}

func TestTenantBySlugDatabaseErrorReturns503WithRetry(t *testing.T) {
	db := tenantTestDB(t)
	tenants.Default = tenants.NewResolver(db, time.Minute)

	// A missing table makes the lookup fail with a real error, which must
	// surface as retryable, never as not-found.
	require.NoError(t, db.Exec("DROP TABLE barbershops").Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/b/imperio-barber/info", nil)
	tenantRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, true, body["retry"])
}

func TestTenantOfficialBindsFlaggedShop(t *testing.T) {
	db := tenantTestDB(t)
	require.NoError(t, db.Create(&tenants.Barbershop{Name: "Imperio Barber", Slug: "imperio-barber", IsOfficial: true}).Error)
	tenants.Default = tenants.NewResolver(db, time.Minute)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	tenantRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "imperio-barber", body["slug"])
	require.Equal(t, "", body["base_path"])
}

func TestTenantOfficialNoneConfiguredReturns404(t *testing.T) {
	db := tenantTestDB(t)
	require.NoError(t, db.Create(&tenants.Barbershop{Name: "Imperio Barber", Slug: "imperio-barber"}).Error)
	tenants.Default = tenants.NewResolver(db, time.Minute)
	config.APP_URL = "http://localhost:5173"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	tenantRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "http://localhost:5173/cadastro", body["register_url"])
}
