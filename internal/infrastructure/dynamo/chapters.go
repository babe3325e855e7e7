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

// ChapterRepo provides typed DynamoDB operations for the chapter_list table.
// PK: book_id, SK: page_number.
type ChapterRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChapterRepo(client *dynamodb.Client, tableName string) *ChapterRepo {
	return &ChapterRepo{client: client, tableName: tableName}
}

func (r *ChapterRepo) Put(ctx context.Context, c *domain.Chapter) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal chapter: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put chapter: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}

// ListByBook returns all chapters of a book in page order.
func (r *ChapterRepo) ListByBook(ctx context.Context, bookID string) ([]domain.Chapter, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("book_id = :book_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":book_id": &types.AttributeValueMemberS{Value: bookID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query chapters: %v: %w", err, domain.ErrUnavailable)
	}
	var chapters []domain.Chapter
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

// UpdateTitle renames the chapter at (bookID, pageNumber).
func (r *ChapterRepo) UpdateTitle(ctx context.Context, bookID string, pageNumber int, title string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{"title": title})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"book_id":     &types.AttributeValueMemberS{Value: bookID},
			"page_number": numKey(int64(pageNumber)),
		},
		ConditionExpression:       aws.String("attribute_exists(book_id)"),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("chapter not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update chapter: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}
