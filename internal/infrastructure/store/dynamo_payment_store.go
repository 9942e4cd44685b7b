package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/orderflow/internal/domain/payment"
)

// DynamoDBAPI is the subset of the DynamoDB client the payment store uses,
// narrowed so tests can supply an in-memory fake.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoPaymentStore keeps payment records in DynamoDB with order_id as the
// partition key. The conditional put is the idempotency guard: a record can
// be written at most once per order.
type DynamoPaymentStore struct {
	client    DynamoDBAPI
	tableName string
}

func NewDynamoPaymentStore(client DynamoDBAPI, tableName string) *DynamoPaymentStore {
	return &DynamoPaymentStore{client: client, tableName: tableName}
}

// NewDynamoClient builds a DynamoDB client from the default AWS config
// chain, optionally pointed at a local endpoint.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

type dynamoPaymentItem struct {
	OrderID   string `dynamodbav:"order_id"`
	Success   bool   `dynamodbav:"success"`
	Reason    string `dynamodbav:"reason"`
	CreatedAt string `dynamodbav:"created_at"`
}

func (s *DynamoPaymentStore) Insert(ctx context.Context, rec *payment.Record) error {
	item, err := attributevalue.MarshalMap(dynamoPaymentItem{
		OrderID:   rec.OrderID,
		Success:   rec.Success,
		Reason:    rec.Reason,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal payment record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("put payment record: %w", err)
	}
	return nil
}

func (s *DynamoPaymentStore) GetByOrderID(ctx context.Context, orderID string) (*payment.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get payment record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var item dynamoPaymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal payment record: %w", err)
	}
	rec := &payment.Record{
		OrderID: item.OrderID,
		Success: item.Success,
		Reason:  item.Reason,
	}
	if t, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}
