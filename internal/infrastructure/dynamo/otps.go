package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aarsha-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// OTPRepo owns the one-pending-code-per-email lifecycle.
// PK: email. A PutItem replaces the prior record wholesale, so concurrent
// issuance for the same email is last-writer-wins with no partial state.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Upsert atomically creates or replaces the single OTP record for email.
func (r *OTPRepo) Upsert(ctx context.Context, email, code string, expiresAt int64) error {
	item, err := attributevalue.MarshalMap(&domain.OTPRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put otp record: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}

// ConsumeIfValid deletes the record for email iff it exists, the stored code
// equals candidate, and now is strictly before the deadline — all in a single
// conditional DeleteItem, so a concurrent identical request cannot consume the
// same code twice. Returns (false, nil) for a missing record, a mismatch or an
// expired code, leaving any existing record untouched.
func (r *OTPRepo) ConsumeIfValid(ctx context.Context, email, candidate string, now int64) (bool, error) {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("email", email),
		ConditionExpression: aws.String("attribute_exists(email) AND otp = :otp AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":otp": &types.AttributeValueMemberS{Value: candidate},
			":now": numKey(now),
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("consume otp record: %v: %w", err, domain.ErrUnavailable)
	}
	return true, nil
}
