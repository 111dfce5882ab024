package config

import (
	"fmt"
	"os"
	"strconv"
)

type DynamoConfig struct {
	TableName string
	// TtlMinutes bounds how long run records are kept.
	TtlMinutes int
}

func GetDynamoConfig() (*DynamoConfig, error) {
	tableName := os.Getenv("DYNAMO_TABLE_NAME")
	if tableName == "" {
		return nil, fmt.Errorf("DYNAMO_TABLE_NAME must be set")
	}

	ttlMinutes := 24 * 60
	if v := os.Getenv("DYNAMO_TTL_MINUTES"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DYNAMO_TTL_MINUTES")
		}
		ttlMinutes = parsed
	}

	return &DynamoConfig{
		TableName:  tableName,
		TtlMinutes: ttlMinutes,
	}, nil
}
