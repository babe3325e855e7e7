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

// ChapterDetailRepo provides typed DynamoDB operations for the chapter_details table.
// PK: book_id, SK: chapter_id.
type ChapterDetailRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChapterDetailRepo(client *dynamodb.Client, tableName string) *ChapterDetailRepo {
	return &ChapterDetailRepo{client: client, tableName: tableName}
}

func (r *ChapterDetailRepo) Get(ctx context.Context, bookID, chapterID string) (*domain.ChapterDetail, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("book_id", bookID, "chapter_id", chapterID),
	})
	if err != nil {
		return nil, fmt.Errorf("get chapter details: %v: %w", err, domain.ErrUnavailable)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("chapter details not found: %w", domain.ErrNotFound)
	}
	var d domain.ChapterDetail
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Upsert writes the full detail document for (book_id, chapter_id), replacing
// any existing one. Returns whether a new document was created.
func (r *ChapterDetailRepo) Upsert(ctx context.Context, d *domain.ChapterDetail) (created bool, err error) {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return false, fmt.Errorf("marshal chapter details: %w", err)
	}
	out, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:    aws.String(r.tableName),
		Item:         item,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("put chapter details: %v: %w", err, domain.ErrUnavailable)
	}
	return len(out.Attributes) == 0, nil
}
