package auth

import (
	"fmt"
	"net/smtp"
	"os"

	"barbergate/config"
)

func SendVerificationEmail(to string, token string) error {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")

	if host == "" {
		// No SMTP configured (local dev): print the link instead of failing.
		fmt.Printf("📬 Verification link for %s: %s/verify?token=%s\n", to, config.WEBHOOK_BASE_URL, token)
		return nil
	}

	auth := smtp.PlainAuth("", from, password, host)

	link := fmt.Sprintf("%s/verify?token=%s", config.WEBHOOK_BASE_URL, token)
	subject := "Confirme sua conta"
	body := fmt.Sprintf("Clique no link abaixo para confirmar sua conta:\n\n%s", link)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	err := smtp.SendMail(host+":"+port, auth, from, []string{to}, message)
	if err != nil {
		fmt.Println("❌ SMTP error:", err)
	}
	return err
}
