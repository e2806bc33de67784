package cmd

import (
	"context"

	"github.com/surrealdb/surreal-sync/checkpoint"
	"github.com/surrealdb/surreal-sync/target"
	"github.com/surrealdb/surreal-sync/target/surreal"
)

func buildWriter(ctx context.Context) (target.Writer, error) {
	if dryRun {
		return &target.DryRun{}, nil
	}
	return surreal.Connect(ctx, surreal.Options{
		Endpoint:  envOr("surreal_endpoint", surrealEndpoint),
		Namespace: toNamespace,
		Database:  toDatabase,
		Username:  envOr("surreal_username", surrealUsername),
		Password:  envOr("surreal_password", surrealPassword),
	})
}

func buildStore() (*checkpoint.Store, error) {
	return checkpoint.NewStore(checkpointDir)
}
