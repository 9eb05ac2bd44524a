package utils

import (
	"fmt"

	"marketplace/config"

	"gopkg.in/gomail.v2"
)

const welcomeHTML = `<div style="font-family:sans-serif;max-width:480px;margin:auto;background:#fff;border-radius:10px;padding:24px 18px 20px 18px;text-align:center;">
  <h2 style="color:#404E7C;margin-bottom:12px;">Bienvenue sur ECEFA !</h2>
  <p>Merci de vous être inscrit à notre newsletter.<br>Vous recevrez désormais nos actualités et offres exclusives.</p>
  <hr style="margin:22px 0 14px 0;border:none;border-top:1px solid #eee;" />
  <div style="font-size:13px;color:#888;">Si vous n'êtes pas à l'origine de cette demande, ignorez simplement cet email.</div>
</div>`

func newMessage(fromName, to, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", config.Cfg.MailFrom, fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	return m
}

func dialer() *gomail.Dialer {
	cfg := config.Cfg
	return gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
}

// SendEmail delivers m through the configured SMTP relay. Without a relay
// mail is silently skipped.
func SendEmail(m *gomail.Message) error {
	if config.Cfg.SMTPHost == "" {
		return nil
	}
	return dialer().DialAndSend(m)
}

// NewsletterWelcome builds the confirmation mail sent to new subscribers.
func NewsletterWelcome(to string) *gomail.Message {
	shop := config.Cfg.ShopName
	m := newMessage(shop+" Newsletter", to, "Bienvenue à la newsletter "+shop+" !")
	m.SetBody("text/html", welcomeHTML)
	return m
}

func SendNewsletterWelcome(to string) error {
	return SendEmail(NewsletterWelcome(to))
}

func orderConfirmationText(name, orderNumber string, total float64, shop string) string {
	return fmt.Sprintf("Bonjour %s,\n\nNous avons bien reçu votre commande %s d'un montant de %.0f FCFA.\n"+
		"Notre service client vous contactera très prochainement pour la livraison.\n\n%s",
		name, orderNumber, total, shop)
}

// OrderConfirmation builds the receipt mailed to the buyer after checkout.
func OrderConfirmation(to, name, orderNumber string, total float64) *gomail.Message {
	shop := config.Cfg.ShopName
	m := newMessage(shop, to, fmt.Sprintf("Commande %s confirmée", orderNumber))
	m.SetBody("text/plain", orderConfirmationText(name, orderNumber, total, shop))
	return m
}
