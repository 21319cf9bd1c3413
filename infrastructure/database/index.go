package database

import (
	"context"

	"matchbox.io/infrastructure/database/connection"
	"matchbox.io/infrastructure/env"
)

func SetUpDatabase(ctx context.Context, cfg env.Config) (*connection.Connections, error) {
	return connection.ConnectToDatabase(ctx, cfg)
}

type BaseModel interface {
	ParseModel() any
}
