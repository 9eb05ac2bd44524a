package utils

import (
	"mime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodedSubject(t *testing.T, header []string) string {
	t.Helper()
	require.Len(t, header, 1)
	subject, err := new(mime.WordDecoder).DecodeHeader(header[0])
	require.NoError(t, err)
	return subject
}

func TestNewsletterWelcome(t *testing.T) {
	withTestConfig(t)

	m := NewsletterWelcome("client@example.com")
	assert.Equal(t, []string{"client@example.com"}, m.GetHeader("To"))
	assert.Equal(t, "Bienvenue à la newsletter ECEFA !", decodedSubject(t, m.GetHeader("Subject")))
	require.Len(t, m.GetHeader("From"), 1)
	assert.Contains(t, m.GetHeader("From")[0], "no-reply@ecefa.com")
}

func TestOrderConfirmation(t *testing.T) {
	withTestConfig(t)

	m := OrderConfirmation("awa@example.com", "Awa", "CMD-20240315-0042", 25000)
	assert.Equal(t, []string{"awa@example.com"}, m.GetHeader("To"))
	assert.Equal(t, "Commande CMD-20240315-0042 confirmée", decodedSubject(t, m.GetHeader("Subject")))

	body := orderConfirmationText("Awa", "CMD-20240315-0042", 25000, "ECEFA")
	assert.Contains(t, body, "Bonjour Awa")
	assert.Contains(t, body, "commande CMD-20240315-0042 d'un montant de 25000 FCFA")
}

func TestSendEmailWithoutRelay(t *testing.T) {
	withTestConfig(t)
	assert.NoError(t, SendEmail(OrderConfirmation("awa@example.com", "Awa", "CMD-1", 1000)))
}
