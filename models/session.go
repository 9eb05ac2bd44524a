package models

import "time"

type SMSLog struct {
	Phone          string    `bson:"phone"`
	TotalSent      int       `bson:"total_sent"`
	FailedAttempts int       `bson:"failed_attempts"`
	LastSent       time.Time `bson:"last_sent"`
	SMSLastMinute  int       `bson:"sms_last_minute"` // reset once LastSent is older than a minute
}
