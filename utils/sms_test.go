package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"07 08 09 10 11", "225708091011"},
		{"2250708091011", "2250708091011"},
		{" +225 07 08 ", "+2250708"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in, "225"), tt.in)
	}
}

func TestSendSMS(t *testing.T) {
	withTestConfig(t)

	var got smsRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"success","message":"queued"}`))
	}))
	defer srv.Close()

	config.Cfg.SMSURL = srv.URL
	config.Cfg.SMSToken = "tok"
	config.Cfg.SMSSenderID = "ECEFA"

	require.NoError(t, SendSMS(context.Background(), "2250708091011", "Merci"))
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, smsRequest{Recipient: "2250708091011", SenderID: "ECEFA", Type: "plain", Message: "Merci"}, got)
}

func TestSendSMSGatewayErrors(t *testing.T) {
	withTestConfig(t)

	status := http.StatusOK
	body := `{"status":"error","message":"invalid sender"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	config.Cfg.SMSURL = srv.URL
	config.Cfg.SMSToken = "tok"

	err := SendSMS(context.Background(), "225", "hi")
	assert.EqualError(t, err, "sms gateway rejected message: invalid sender")

	status, body = http.StatusUnauthorized, "nope"
	err = SendSMS(context.Background(), "225", "hi")
	assert.EqualError(t, err, "sms gateway returned 401: nope")
}

func TestSendSMSDisabled(t *testing.T) {
	withTestConfig(t)
	assert.ErrorIs(t, SendSMS(context.Background(), "225", "hi"), ErrSMSDisabled)
}
