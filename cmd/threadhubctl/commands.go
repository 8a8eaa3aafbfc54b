package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Global flags shared by all subcommands.
var (
	mongoURI      string
	mongoDatabase string

	rootCmd = &cobra.Command{
		Use:   "threadhubctl",
		Short: "Operator tooling for the ThreadHub discussion service",
		Long: `threadhubctl inspects and repairs the ThreadHub database.

The thread store keeps soft references between threads, users, and
communities. Crashes between the bulk delete and the reference cleanup
of a cascading delete can leave stale references behind; scan finds
them and repair replays the cleanup recorded in the audit trail.`,
	}

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Scan the database for referential drift",
		Run:   runScan, // Defined in cmd_scan.go
	}

	repairCmd = &cobra.Command{
		Use:   "repair",
		Short: "Replay reference cleanup for failed cascade deletes",
		Run:   runRepair, // Defined in cmd_repair.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri",
		envOr("THREADHUB_MONGO_URI", "mongodb://localhost:27017"),
		"MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&mongoDatabase, "mongo-database",
		envOr("THREADHUB_MONGO_DATABASE", "thread_hub"),
		"MongoDB database name")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(repairCmd)
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// connect dials MongoDB and verifies the connection with a ping.
// The caller owns the returned client and must disconnect it.
func connect(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	return client, client.Database(mongoDatabase), nil
}
