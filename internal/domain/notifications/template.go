package notifications

import (
	"fmt"
	"regexp"
)

// TemplateData is the closed set of fields a tenant template may reference.
type TemplateData struct {
	ClientName       string
	ServiceName      string
	ProfessionalName string
	Date             string
	Time             string
	BarbershopName   string
}

func (d TemplateData) fields() map[string]string {
	return map[string]string{
		"cliente_nome": d.ClientName,
		"servico":      d.ServiceName,
		"profissional": d.ProfessionalName,
		"data":         d.Date,
		"horario":      d.Time,
		"barbearia":    d.BarbershopName,
	}
}

var placeholder = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// Render substitutes the recognized {{token}} placeholders in content.
// Unrecognized tokens are left verbatim and reported back so the caller can
// log them; they are never an error.
func Render(content string, data TemplateData) (string, []string) {
	fields := data.fields()
	var unknown []string

	out := placeholder.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		if v, ok := fields[name]; ok {
			return v
		}
		unknown = append(unknown, name)
		return match
	})

	return out, unknown
}

// UnknownPlaceholders lists the {{token}} names in content that Render would
// leave verbatim. Useful for validating a template before saving it.
func UnknownPlaceholders(content string) []string {
	fields := TemplateData{}.fields()
	var unknown []string
	for _, match := range placeholder.FindAllStringSubmatch(content, -1) {
		if _, ok := fields[match[1]]; !ok {
			unknown = append(unknown, match[1])
		}
	}
	return unknown
}

// DefaultMessage is the fallback used when a tenant has no active template
// for (event, channel).
func DefaultMessage(event string, data TemplateData) string {
	switch event {
	case EventConfirmation:
		return fmt.Sprintf("Olá %s! Seu agendamento de %s com %s está confirmado para %s às %s. Até logo! - %s",
			data.ClientName, data.ServiceName, data.ProfessionalName, data.Date, data.Time, data.BarbershopName)
	case EventCancellation:
		return fmt.Sprintf("Olá %s, seu agendamento de %s em %s às %s foi cancelado. - %s",
			data.ClientName, data.ServiceName, data.Date, data.Time, data.BarbershopName)
	case EventReminder:
		return fmt.Sprintf("Olá %s! Lembrete: você tem %s com %s amanhã, %s às %s. - %s",
			data.ClientName, data.ServiceName, data.ProfessionalName, data.Date, data.Time, data.BarbershopName)
	default:
		return fmt.Sprintf("Olá %s, você tem uma atualização do seu agendamento em %s.", data.ClientName, data.BarbershopName)
	}
}
