package mail

// Config seleciona e configura o transporte de email.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	From           string
	FromName       string
	SendGridAPIKey string
}
