package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"barbergate/database"
	"barbergate/internal/app/http/middleware"
	"barbergate/internal/app/logger"
	"barbergate/internal/domain/bookings"
	"barbergate/internal/domain/notifications"
	"barbergate/internal/domain/tenants"
	"barbergate/internal/domain/users"
	"barbergate/internal/infra/ai"
	"barbergate/internal/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	AI         *ai.Client
	Dispatcher *notify.Dispatcher
}

func NewHandler(client *ai.Client, d *notify.Dispatcher) *Handler {
	return &Handler{AI: client, Dispatcher: d}
}

// actionBlock matches the booking action the model is instructed to emit at
// the end of its reply when the customer confirms a time.
var actionBlock = regexp.MustCompile(`\{\s*"action"\s*:\s*"create_booking"[^}]*\}`)

type bookingAction struct {
	Action       string `json:"action"`
	Service      string `json:"service"`
	Professional string `json:"professional"`
	Date         string `json:"date"` // "2006-01-02"
	Time         string `json:"time"` // "15:04"
}

// POST /b/:slug/chat
func (h *Handler) Chat(c *gin.Context) {
	shop, ok := middleware.MustBarbershop(c)
	if !ok {
		return
	}

	if h.AI == nil || !h.AI.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not available"})
		return
	}

	var input struct {
		Message string       `json:"message" binding:"required"`
		History []ai.Message `json:"history"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var services []bookings.Service
	database.DB.Where("barbershop_id = ? AND active = ?", shop.ID, true).Find(&services)
	var pros []bookings.Professional
	database.DB.Where("barbershop_id = ? AND active = ?", shop.ID, true).Find(&pros)

	messages := []ai.Message{{Role: "system", Content: systemPrompt(shop, services, pros)}}
	// Cap the history the client replays so the prompt stays bounded.
	history := input.History
	if len(history) > 20 {
		history = history[len(history)-20:]
	}
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: "user", Content: input.Message})

	reply, err := h.AI.Complete(c.Request.Context(), messages)
	if err != nil {
		logger.L().Error("chat completion failed", zap.Uint("barbershop_id", shop.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant is not available, try again"})
		return
	}

	visible, action := extractAction(reply)

	response := gin.H{"reply": visible}

	if action != nil {
		booking, err := h.createFromAction(c, shop, services, pros, action)
		if err != nil {
			// The conversation still succeeded; surface the booking problem
			// without failing the request.
			logger.L().Warn("chat booking failed", zap.Uint("barbershop_id", shop.ID), zap.Error(err))
			response["booking_error"] = err.Error()
		} else if booking != nil {
			response["booking"] = booking
		}
	}

	c.JSON(http.StatusOK, response)
}

func systemPrompt(shop *tenants.Barbershop, services []bookings.Service, pros []bookings.Professional) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Você é o assistente virtual da barbearia %s. Responda em português, de forma curta e simpática.\n", shop.Name)
	fmt.Fprintf(&b, "Horário de funcionamento: %s às %s (%s).\n", shop.OpeningTime, shop.ClosingTime, shop.OpeningDays)

	b.WriteString("Serviços disponíveis:\n")
	for _, s := range services {
		fmt.Fprintf(&b, "- %s (R$ %.2f, %d min)\n", s.Name, s.PriceBRL, s.DurationMinutes)
	}
	b.WriteString("Profissionais:\n")
	for _, p := range pros {
		fmt.Fprintf(&b, "- %s\n", p.Name)
	}

	b.WriteString("\nQuando o cliente confirmar serviço, profissional, data e horário, termine a resposta com um bloco JSON exatamente neste formato:\n")
	b.WriteString(`{"action":"create_booking","service":"...","professional":"...","date":"AAAA-MM-DD","time":"HH:MM"}`)
	b.WriteString("\nNão emita o bloco antes da confirmação do cliente.")
	return b.String()
}

// extractAction pulls the trailing booking action out of the model reply and
// returns the reply with the block removed.
func extractAction(reply string) (string, *bookingAction) {
	match := actionBlock.FindString(reply)
	if match == "" {
		return strings.TrimSpace(reply), nil
	}

	var action bookingAction
	if err := json.Unmarshal([]byte(match), &action); err != nil || action.Action != "create_booking" {
		return strings.TrimSpace(reply), nil
	}

	visible := strings.TrimSpace(strings.Replace(reply, match, "", 1))
	return visible, &action
}

func (h *Handler) createFromAction(c *gin.Context, shop *tenants.Barbershop, services []bookings.Service, pros []bookings.Professional, action *bookingAction) (*bookings.Booking, error) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		return nil, fmt.Errorf("faça login para confirmar o agendamento")
	}

	service := matchService(services, action.Service)
	if service == nil {
		return nil, fmt.Errorf("serviço %q não encontrado", action.Service)
	}

	pro := matchProfessional(pros, action.Professional)
	if pro == nil {
		return nil, fmt.Errorf("profissional %q não encontrado", action.Professional)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", action.Date+" "+action.Time, time.Local)
	if err != nil {
		return nil, fmt.Errorf("data ou horário inválido")
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("usuário não encontrado")
	}

	client, err := findOrCreateClient(shop.ID, user)
	if err != nil {
		return nil, fmt.Errorf("falha ao registrar cliente")
	}

	booking := bookings.Booking{
		BarbershopID:   shop.ID,
		ServiceID:      service.ID,
		ProfessionalID: pro.ID,
		ClientID:       client.ID,
		StartTime:      start,
		EndTime:        start.Add(time.Duration(service.DurationMinutes) * time.Minute),
		Status:         bookings.StatusScheduled,
		Notes:          "Agendado pelo assistente",
	}
	if err := database.DB.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("falha ao criar agendamento")
	}

	h.Dispatcher.Dispatch(c.Request.Context(), shop, notifications.EventConfirmation, notify.BookingDetails{
		ClientName:       client.Name,
		ClientEmail:      client.Email,
		ClientPhone:      client.Phone,
		ServiceName:      service.Name,
		ProfessionalName: pro.Name,
		Date:             start.Format("02/01/2006"),
		Time:             start.Format("15:04"),
	})

	return &booking, nil
}

func matchService(services []bookings.Service, name string) *bookings.Service {
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range services {
		if strings.ToLower(services[i].Name) == want {
			return &services[i]
		}
	}
	for i := range services {
		if strings.Contains(strings.ToLower(services[i].Name), want) && want != "" {
			return &services[i]
		}
	}
	return nil
}

func matchProfessional(pros []bookings.Professional, name string) *bookings.Professional {
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range pros {
		if strings.ToLower(pros[i].Name) == want {
			return &pros[i]
		}
	}
	for i := range pros {
		if strings.Contains(strings.ToLower(pros[i].Name), want) && want != "" {
			return &pros[i]
		}
	}
	// The model sometimes answers "qualquer um"; fall back to the first
	// active professional.
	if len(pros) > 0 {
		return &pros[0]
	}
	return nil
}

func findOrCreateClient(shopID uint, user users.User) (*bookings.Client, error) {
	var client bookings.Client
	if err := database.DB.Where("barbershop_id = ? AND user_id = ?", shopID, user.ID).First(&client).Error; err == nil {
		return &client, nil
	}

	uid := user.ID
	client = bookings.Client{
		BarbershopID: shopID,
		UserID:       &uid,
		Name:         strings.TrimSpace(user.Name + " " + user.Lastname),
		Email:        user.Email,
		Phone:        user.Tel,
	}
	if err := database.DB.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}
