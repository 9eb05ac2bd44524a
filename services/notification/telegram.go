package notification

import (
	"fmt"
	"strings"

	"marketplace/logger"
	"marketplace/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier tells shop admins about new orders.
type Notifier interface {
	OrderPlaced(order *models.Order)
}

type Telegram struct {
	api     *tgbotapi.BotAPI
	chatIDs []int64
}

// Nop is used when no bot token is configured.
type Nop struct{}

func (Nop) OrderPlaced(*models.Order) {}

// New returns a Telegram notifier, or Nop when token or chats are missing.
func New(token string, chatIDs []int64) (Notifier, error) {
	if token == "" || len(chatIDs) == 0 {
		return Nop{}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	logger.Log.WithField("bot", api.Self.UserName).Info("Telegram notifications enabled")
	return &Telegram{api: api, chatIDs: chatIDs}, nil
}

func (t *Telegram) OrderPlaced(order *models.Order) {
	text := FormatOrder(order)
	for _, chatID := range t.chatIDs {
		if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"chat":  chatID,
				"order": order.OrderNumber,
			}).Warn("telegram notification failed")
		}
	}
}

// FormatOrder renders the admin notice for a new order.
func FormatOrder(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Nouvelle commande %s\n", o.OrderNumber)
	fmt.Fprintf(&b, "Client: %s (%s)\n", o.ShippingAddress.Name, o.ShippingAddress.Phone)
	if o.ShippingAddress.City != "" || o.ShippingAddress.Address != "" {
		fmt.Fprintf(&b, "Adresse: %s, %s\n", o.ShippingAddress.Address, o.ShippingAddress.City)
	}
	for _, p := range o.Products {
		fmt.Fprintf(&b, "• %s x%d - %.0f\n", p.Name, p.Quantity, p.Price*float64(p.Quantity))
	}
	if o.PromoAmount > 0 {
		fmt.Fprintf(&b, "Promo: -%.0f\n", o.PromoAmount)
	}
	fmt.Fprintf(&b, "Total: %.0f FCFA", o.TotalPrice)
	return b.String()
}
