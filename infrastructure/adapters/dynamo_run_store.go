package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"github.com/AnantSoni360/Pptvideo/application/ports/outbound"
	"github.com/AnantSoni360/Pptvideo/config"
	"github.com/AnantSoni360/Pptvideo/domain"
)

type dynamoRunItem struct {
	RunId       string `dynamodbav:"run_id"`
	State       string `dynamodbav:"state"`
	SlideCount  int    `dynamodbav:"slide_count"`
	VideoKey    string `dynamodbav:"video_key"`
	VideoRegion string `dynamodbav:"video_region"`
	FailReason  string `dynamodbav:"fail_reason"`
	TTL         int64  `dynamodbav:"ttl"`
}

type dynamoRunStore struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

func NewDynamoRunStore(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB, dynamoConfig *config.DynamoConfig) outbound.RunStorePort {
	return &dynamoRunStore{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (s *dynamoRunStore) Save(ctx context.Context, record domain.RunRecord) error {
	item := dynamoRunItem{
		RunId:       record.RunID,
		State:       string(record.State),
		SlideCount:  record.SlideCount,
		VideoKey:    record.VideoKey,
		VideoRegion: record.VideoRegion,
		FailReason:  record.FailReason,
		TTL:         time.Now().Add(time.Duration(s.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to marshal run record", map[string]interface{}{
			"run_id": record.RunID,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(s.dynamoConfig.TableName),
	}

	_, err = s.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to save run record", map[string]interface{}{
			"run_id": record.RunID,
			"state":  record.State,
		})
		return err
	}

	return nil
}

func (s *dynamoRunStore) Get(ctx context.Context, runID string) (*domain.RunRecord, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.dynamoConfig.TableName),
		Key: map[string]*dynamodb.AttributeValue{
			"run_id": {S: aws.String(runID)},
		},
	}

	out, err := s.dynamoSvc.GetItemWithContext(ctx, input)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to fetch run record", map[string]interface{}{
			"run_id": runID,
		})
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}

	var item dynamoRunItem
	if err = dynamodbattribute.UnmarshalMap(out.Item, &item); err != nil {
		s.logger.Error(err, "Failed to unmarshal run record")
		return nil, err
	}

	return &domain.RunRecord{
		RunID:       item.RunId,
		State:       domain.RunState(item.State),
		SlideCount:  item.SlideCount,
		VideoKey:    item.VideoKey,
		VideoRegion: item.VideoRegion,
		FailReason:  item.FailReason,
	}, nil
}
