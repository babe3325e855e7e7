package dynamo

import (
	"context"
	"fmt"

	"github.com/aarsha-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// WishlistRepo provides typed DynamoDB operations for the wishlists table.
// PK: email, SK: book_id.
type WishlistRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWishlistRepo(client *dynamodb.Client, tableName string) *WishlistRepo {
	return &WishlistRepo{client: client, tableName: tableName}
}

func (r *WishlistRepo) Put(ctx context.Context, item *domain.WishlistItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal wishlist item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put wishlist item: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}

func (r *WishlistRepo) ListByEmail(ctx context.Context, email string) ([]domain.WishlistItem, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %v: %w", err, domain.ErrUnavailable)
	}
	var items []domain.WishlistItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *WishlistRepo) Delete(ctx context.Context, email, bookID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("email", email, "book_id", bookID),
	})
	if err != nil {
		return fmt.Errorf("delete wishlist item: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}
