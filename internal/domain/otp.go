package domain

// OTPRecord is the single pending verification code for an email.
// PK: email — a new issuance replaces the prior record, never duplicates it.
// ExpiresAt is a Unix timestamp, doubled as the DynamoDB TTL attribute; expiry
// is enforced at read time, the TTL sweep only reaps garbage.
type OTPRecord struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"otp" dynamodbav:"otp"`
	ExpiresAt int64  `json:"expiresAt" dynamodbav:"expires_at"`
}
