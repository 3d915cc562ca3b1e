package mailer

import (
	"ctb/src/lib"
	"log"
	"os"
)

// NewMailerMessage sends through the configured SMTP relay. With no SMTP host
// configured the message is dropped with a log line so local setups work
// without a mail account.
func NewMailerMessage(input *lib.SendMailInput) error {
	if os.Getenv("SMTP_HOST") == "" {
		log.Printf("[mailer] SMTP not configured, skipping message to %v\n", input.To)
		return nil
	}
	if err := lib.SendMail(input); err != nil {
		return err
	}
	log.Printf("[mailer] an email has been sent to %v\n", input.To)
	return nil
}
