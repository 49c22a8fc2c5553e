package testutil

import (
	"context"
	"testing"
	"time"

	"telecare/pkg/client"
	"telecare/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultDatabaseName    = "telecare_test"
	ConnectionTimeout      = 10 * time.Second
	AppointmentsCollection = "Appointments"
	SlotLocksCollection    = "Slot_locks"
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	if mongoURI == "" {
		mongoURI = DefaultMongoURI
	}
	if dbName == "" {
		dbName = DefaultDatabaseName
	}

	testLogger := logger.New(logger.Config{
		Service: "test",
		Level:   "debug",
	})

	prodClient := client.NewClient()
	prodClient.SetMongo(testLogger, mongoURI, ConnectionTimeout)

	return &MongoHelper{
		Client:   prodClient.Mongo.Client,
		Database: prodClient.Mongo.Client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) CleanCollection(t *testing.T, collectionName string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := m.Database.Collection(collectionName).DeleteMany(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("failed to clean collection %s: %v", collectionName, err)
	}
	t.Logf("Cleaned %d documents from collection: %s", result.DeletedCount, collectionName)
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}
