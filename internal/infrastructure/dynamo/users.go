package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aarsha-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
	now       func() time.Time
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put user: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}

// MarkVerified flips the verified flag after a successful OTP verification.
func (r *UserRepo) MarkVerified(ctx context.Context, email string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"verified":   true,
		"updated_at": r.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("email", email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("mark user verified: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}
