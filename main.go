package main

import (
	"log"
	"os"
	"time"

	"barbergate/config"
	"barbergate/database"
	"barbergate/internal/api/billing"
	bookingsapi "barbergate/internal/api/bookings"
	"barbergate/internal/api/chat"
	"barbergate/internal/api/paymentwebhook"
	routes "barbergate/internal/app/http"
	"barbergate/internal/app/logger"
	"barbergate/internal/domain/tenants"
	"barbergate/internal/infra/ai"
	"barbergate/internal/infra/mercadopago"
	"barbergate/internal/jobs"
	"barbergate/internal/notify"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	logger.Init(config.APP_ENV)
	defer logger.Sync()

	database.InitDB()
	tenants.Init(database.DB)

	// Provisioning-time repair: safe to run on every boot.
	if _, err := tenants.EnsureOfficial(database.DB, config.OFFICIAL_NAME); err != nil {
		log.Fatal("❌ Failed to flag official barbershop: ", err)
	}

	provider, err := mercadopago.NewProvider(config.MP_ACCESS_TOKEN)
	if err != nil {
		log.Fatal("❌ Failed to init Mercado Pago client: ", err)
	}

	relay := notify.NewHTTPRelay(config.EMAIL_RELAY_URL, config.WHATSAPP_RELAY_URL, config.NOTIFY_IS_TEST)
	dispatcher := notify.NewDispatcher(database.DB, relay, logger.L())
	dispatcher.EmailRequiresOptIn = config.NOTIFY_EMAIL_REQUIRES_OPT_IN

	aiClient := ai.NewClient(config.AI_API_URL, config.AI_API_KEY, config.AI_MODEL)

	handlers := &routes.Handlers{
		Webhook:  paymentwebhook.NewHandler(database.DB, provider, logger.L()),
		Bookings: bookingsapi.NewHandler(dispatcher),
		Billing:  billing.NewHandler(provider),
		Chat:     chat.NewHandler(aiClient, dispatcher),
		Reminders: &jobs.ReminderJob{
			DB:         database.DB,
			Dispatcher: dispatcher,
			Log:        logger.L(),
		},
	}

	r := gin.Default()

	// ✅ Add CORS middleware BEFORE registering routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, handlers)

	r.Run(":" + config.PORT)
}
