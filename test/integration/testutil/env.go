package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"
)

const DefaultHealthCheckTimeout = 30 * time.Second

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

// NewTestEnv reads the integration environment. Tests are skipped unless
// TEST_SERVER_URL points at a running appointments service.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration tests")
	}

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    serverURL,
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollection(t, AppointmentsCollection)
	mongo.CleanCollection(t, SlotLocksCollection)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, client
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanCollection(t, AppointmentsCollection)
		mongo.CleanCollection(t, SlotLocksCollection)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Fixture IDs are valid 24-char hex ObjectID strings.
func ProviderID(n int) string {
	return fmt.Sprintf("a1b2c3d4e5f6a7b8c9d0e%03d", n)
}

func PatientID(n int) string {
	return fmt.Sprintf("f1e2d3c4b5a6f7e8d9c0b%03d", n)
}
