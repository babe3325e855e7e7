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

// BookRepo provides typed DynamoDB operations for the book_list table.
type BookRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBookRepo(client *dynamodb.Client, tableName string) *BookRepo {
	return &BookRepo{client: client, tableName: tableName}
}

func (r *BookRepo) Put(ctx context.Context, b *domain.Book) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put book: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}

func (r *BookRepo) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("book_id", bookID),
	})
	if err != nil {
		return nil, fmt.Errorf("get book: %v: %w", err, domain.ErrUnavailable)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("book not found: %w", domain.ErrNotFound)
	}
	var b domain.Book
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookRepo) Scan(ctx context.Context) ([]domain.Book, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, fmt.Errorf("scan books: %v: %w", err, domain.ErrUnavailable)
	}
	var books []domain.Book
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Update applies a partial update. The condition guards against silently
// creating a new item for an unknown id.
func (r *BookRepo) Update(ctx context.Context, bookID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("book_id", bookID),
		ConditionExpression:       aws.String("attribute_exists(book_id)"),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("book not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update book: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}
