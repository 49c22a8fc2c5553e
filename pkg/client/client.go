package client

import (
	"context"
	"time"

	"telecare/pkg/logger"
)

// Client holds lazily-initialized connections to external collaborators.
type Client struct {
	Mongo *MongoClient

	log *logger.Logger
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, connTimeout time.Duration) {
	c.log = log
	c.Mongo = NewMongoClient(log, mongoURI, connTimeout)
}

func (c *Client) GracefulShutdown() {
	if c.Mongo != nil && c.Mongo.Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Mongo.Client.Disconnect(ctx); err != nil && c.log != nil {
			c.log.Warn("Failed to disconnect MongoDB client", "error", err)
		}
	}
}
