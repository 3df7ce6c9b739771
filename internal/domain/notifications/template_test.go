package notifications

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleData() TemplateData {
	return TemplateData{
		ClientName:       "Maria",
		ServiceName:      "Corte Degradê",
		ProfessionalName: "João",
		Date:             "15/03/2026",
		Time:             "14:30",
		BarbershopName:   "Imperio Barber",
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("substitutes known placeholders", func(t *testing.T) {
		t.Parallel()
		out, unknown := Render("Olá {{cliente_nome}}, seu {{servico}} com {{profissional}} é {{data}} às {{horario}}. - {{barbearia}}", sampleData())
		require.Equal(t, "Olá Maria, seu Corte Degradê com João é 15/03/2026 às 14:30. - Imperio Barber", out)
		require.Empty(t, unknown)
	})

	t.Run("tolerates whitespace inside braces", func(t *testing.T) {
		t.Parallel()
		out, unknown := Render("Oi {{ cliente_nome }}!", sampleData())
		require.Equal(t, "Oi Maria!", out)
		require.Empty(t, unknown)
	})

	t.Run("leaves unknown tokens verbatim and reports them", func(t *testing.T) {
		t.Parallel()
		out, unknown := Render("Olá {{cliente_nome}}, código {{cupom}}", sampleData())
		require.Equal(t, "Olá Maria, código {{cupom}}", out)
		require.Equal(t, []string{"cupom"}, unknown)
	})

	t.Run("content without placeholders passes through", func(t *testing.T) {
		t.Parallel()
		out, unknown := Render("Mensagem fixa.", sampleData())
		require.Equal(t, "Mensagem fixa.", out)
		require.Empty(t, unknown)
	})
}

func TestUnknownPlaceholders(t *testing.T) {
	t.Parallel()

	require.Empty(t, UnknownPlaceholders("Olá {{cliente_nome}} às {{horario}}"))
	require.Equal(t, []string{"cupom", "desconto"}, UnknownPlaceholders("{{cupom}} {{desconto}} {{servico}}"))
}

func TestDefaultMessage(t *testing.T) {
	t.Parallel()

	data := sampleData()

	require.Contains(t, DefaultMessage(EventConfirmation, data), "confirmado")
	require.Contains(t, DefaultMessage(EventConfirmation, data), "Maria")
	require.Contains(t, DefaultMessage(EventCancellation, data), "cancelado")
	require.Contains(t, DefaultMessage(EventReminder, data), "Lembrete")
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"formatted local number", "(11) 98888-7777", "5511988887777"},
		{"already has country code", "5511988887777", "5511988887777"},
		{"plus prefix stripped", "+55 11 98888-7777", "5511988887777"},
		{"bare digits get prefix", "11988887777", "5511988887777"},
		{"empty stays empty", "", ""},
		{"punctuation only", "()-", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expect, NormalizePhone(tt.input))
		})
	}
}
