package email

// Config holds email delivery configuration. The Postmark tokens are
// optional so development environments can run with the DevSender; the
// sender identity is always required.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
	DevOutputDir         string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}
