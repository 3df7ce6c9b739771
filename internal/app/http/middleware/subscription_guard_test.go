package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"barbergate/database"
	"barbergate/internal/domain/subscriptions"
	"barbergate/internal/domain/tenants"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func guardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&tenants.Barbershop{},
		&subscriptions.BarbershopSubscription{},
	))
	return db
}

// guardRouter runs RequireActiveAccess behind a stub that plants the
// authenticated user id, the way the JWT middleware does in production.
func guardRouter(userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
		}
		c.Next()
	}
	r.GET("/dashboard", auth, RequireActiveAccess(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"barbershop_id": c.GetUint("owned_barbershop_id")})
	})
	return r
}

func performGuard(userID uint) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	guardRouter(userID).ServeHTTP(w, req)
	return w
}

func TestRequireActiveAccessUnauthenticated(t *testing.T) {
	database.DB = guardTestDB(t)

	w := performGuard(0)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireActiveAccessNoBarbershop(t *testing.T) {
	database.DB = guardTestDB(t)

	w := performGuard(7)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireActiveAccessExpiredTrialReturns402WithContactURL(t *testing.T) {
	db := guardTestDB(t)
	database.DB = db

	shop := tenants.Barbershop{OwnerID: 7, Name: "Imperio Barber", Slug: "imperio-barber"}
	require.NoError(t, db.Create(&shop).Error)

	over := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Create(&subscriptions.BarbershopSubscription{
		BarbershopID: shop.ID,
		PlanType:     subscriptions.PlanTypeTrial,
		Status:       subscriptions.StatusActive,
		TrialEndsAt:  &over,
	}).Error)

	w := performGuard(7)
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	body := decodeBody(t, w)
	require.Contains(t, body["contact_url"], "https://wa.me/"+supportWhatsApp)
	require.Contains(t, body["contact_url"], "?text=")
}

func TestRequireActiveAccessActiveTrialPasses(t *testing.T) {
	db := guardTestDB(t)
	database.DB = db

	shop := tenants.Barbershop{OwnerID: 7, Name: "Imperio Barber", Slug: "imperio-barber"}
	require.NoError(t, db.Create(&shop).Error)

	ends := time.Now().Add(5 * 24 * time.Hour)
	require.NoError(t, db.Create(&subscriptions.BarbershopSubscription{
		BarbershopID: shop.ID,
		PlanType:     subscriptions.PlanTypeTrial,
		Status:       subscriptions.StatusActive,
		TrialEndsAt:  &ends,
	}).Error)

	w := performGuard(7)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, float64(shop.ID), body["barbershop_id"])
}

func TestRequireActiveAccessPaidSubscriptionPasses(t *testing.T) {
	db := guardTestDB(t)
	database.DB = db

	shop := tenants.Barbershop{OwnerID: 7, Name: "Imperio Barber", Slug: "imperio-barber"}
	require.NoError(t, db.Create(&shop).Error)

	ends := time.Now().Add(30 * 24 * time.Hour)
	require.NoError(t, db.Create(&subscriptions.BarbershopSubscription{
		BarbershopID:       shop.ID,
		PlanType:           "monthly",
		Status:             subscriptions.StatusActive,
		SubscriptionEndsAt: &ends,
	}).Error)

	w := performGuard(7)
	require.Equal(t, http.StatusOK, w.Code)
}
