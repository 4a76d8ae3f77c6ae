package main

import (
	"context"
	"fmt"
	"time"

	mongomigration "skybook/internal/migrations/mongo"
	"skybook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.Client.Close(context.Background())

	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName)
	if err := mongomigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	fmt.Println("Migration completed successfully.")
}
