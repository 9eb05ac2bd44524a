package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketplace/config"
	"marketplace/logger"
	"marketplace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const smsLimitPerMinute = 6

var (
	ErrSMSRateLimited = errors.New("sms rate limit reached, try again later")
	ErrSMSDisabled    = errors.New("sms gateway not configured")
)

var smsClient = &http.Client{Timeout: 10 * time.Second}

type smsRequest struct {
	Recipient string `json:"recipient"`
	SenderID  string `json:"sender_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

type smsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NormalizePhone strips whitespace and swaps a leading 0 for the country code.
func NormalizePhone(phone, countryCode string) string {
	phone = strings.Join(strings.Fields(phone), "")
	if strings.HasPrefix(phone, "0") {
		phone = countryCode + phone[1:]
	}
	return phone
}

// SendSMS posts message to the gateway and records the attempt in the sms log.
// A phone that already received smsLimitPerMinute messages within the last
// minute is refused.
func SendSMS(ctx context.Context, phone, message string) error {
	cfg := config.Cfg
	if cfg == nil || cfg.SMSToken == "" {
		return ErrSMSDisabled
	}

	shouldReset := true
	if config.SMSLogCollection != nil {
		var smsLog models.SMSLog
		err := config.SMSLogCollection.FindOne(ctx, bson.M{"phone": phone}).Decode(&smsLog)
		if err == nil {
			shouldReset = time.Since(smsLog.LastSent) >= time.Minute
			if !shouldReset && smsLog.SMSLastMinute >= smsLimitPerMinute {
				return ErrSMSRateLimited
			}
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("read sms log: %w", err)
		}
	}

	if err := postSMS(ctx, cfg.SMSURL, cfg.SMSToken, smsRequest{
		Recipient: phone,
		SenderID:  cfg.SMSSenderID,
		Type:      "plain",
		Message:   message,
	}); err != nil {
		recordSMS(ctx, phone, bson.M{"$inc": bson.M{"failed_attempts": 1}})
		return err
	}

	update := bson.M{
		"$set": bson.M{"last_sent": time.Now()},
		"$inc": bson.M{"total_sent": 1},
	}
	if shouldReset {
		update["$set"].(bson.M)["sms_last_minute"] = 1
	} else {
		update["$inc"].(bson.M)["sms_last_minute"] = 1
	}
	recordSMS(ctx, phone, update)
	return nil
}

func recordSMS(ctx context.Context, phone string, update bson.M) {
	if config.SMSLogCollection == nil {
		return
	}
	_, err := config.SMSLogCollection.UpdateOne(ctx, bson.M{"phone": phone}, update, options.Update().SetUpsert(true))
	if err != nil {
		logger.Log.WithError(err).WithField("phone", phone).Warn("sms log update failed")
	}
}

func postSMS(ctx context.Context, url, token string, payload smsRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := smsClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	logger.Log.WithFields(map[string]interface{}{
		"recipient": payload.Recipient,
		"status":    resp.StatusCode,
	}).Debug("sms gateway response")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, respBody)
	}

	var out smsResponse
	if err := json.Unmarshal(respBody, &out); err == nil && out.Status != "" && out.Status != "success" {
		return fmt.Errorf("sms gateway rejected message: %s", out.Message)
	}
	return nil
}
