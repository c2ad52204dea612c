// internal/common/database/dynamodb.go
// DynamoDB client construction

package database

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// DynamoDBConfig holds DynamoDB configuration. Endpoint is only set for
// local emulators.
type DynamoDBConfig struct {
	Region   string
	Endpoint string
}

// NewDynamoDBClient creates a client using the default AWS credential chain
func NewDynamoDBClient(config *DynamoDBConfig) (*dynamodb.DynamoDB, error) {
	awsCfg := aws.NewConfig().WithRegion(config.Region)
	if config.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(config.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return dynamodb.New(sess), nil
}
