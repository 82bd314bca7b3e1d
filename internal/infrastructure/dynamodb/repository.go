package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

type itemAPI interface {
	GetItem(ctx context.Context, in *awsv2dynamodb.GetItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *awsv2dynamodb.PutItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *awsv2dynamodb.DeleteItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.DeleteItemOutput, error)
}

type Client struct {
	db        itemAPI
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	client := awsv2dynamodb.NewFromConfig(cfg)
	return &Client{db: client, tableName: tableName}, nil
}

func sessionPK(profile string) string { return "SESSION#" + profile }
func tokenSK() string                 { return "TOKEN" }

// TokenStore keeps the console credential in a shared table so several
// workstations under one profile see the same login.
type TokenStore struct {
	client  *Client
	profile string
}

func NewTokenStore(client *Client, profile string) *TokenStore {
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{client: client, profile: profile}
}

func (s *TokenStore) key() map[string]awsv2types.AttributeValue {
	return map[string]awsv2types.AttributeValue{
		"PK": &awsv2types.AttributeValueMemberS{Value: sessionPK(s.profile)},
		"SK": &awsv2types.AttributeValueMemberS{Value: tokenSK()},
	}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetSessionToken", func(ctx context.Context) error {
		var e error
		out, e = s.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName:      aws.String(s.client.tableName),
			Key:            s.key(),
			ConsistentRead: aws.Bool(true),
		})
		return e
	})
	if err != nil {
		return "", err
	}
	if out == nil || out.Item == nil {
		return "", nil
	}
	raw := struct {
		Token string `dynamodbav:"Token"`
	}{}
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return "", err
	}
	return raw.Token, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	item := map[string]any{
		"PK":         sessionPK(s.profile),
		"SK":         tokenSK(),
		"EntityType": "SESSION_TOKEN",
		"Token":      token,
		"UpdatedAt":  time.Now().UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutSessionToken", func(ctx context.Context) error {
		_, err := s.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(s.client.tableName),
			Item:      av,
		})
		return err
	})
}

func (s *TokenStore) Delete(ctx context.Context) error {
	return xray.Capture(ctx, "DynamoDB.DeleteSessionToken", func(ctx context.Context) error {
		_, err := s.client.db.DeleteItem(ctx, &awsv2dynamodb.DeleteItemInput{
			TableName: aws.String(s.client.tableName),
			Key:       s.key(),
		})
		return err
	})
}
