// Package testutil starts the backing services used by integration tests.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type ContainerConfig struct {
	MongoDBVersion  string
	RedisVersion    string
	RabbitMQVersion string
}

func DefaultContainerConfig() ContainerConfig {
	return ContainerConfig{
		MongoDBVersion:  "6.0",
		RedisVersion:    "7.0",
		RabbitMQVersion: "3.12-alpine",
	}
}

// Container is a started test container together with the address it is
// reachable on.
type Container struct {
	testcontainers.Container
	Host string
	Port string
	URI  string
}

func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Container == nil {
		return nil
	}
	return c.Terminate(ctx)
}

func start(ctx context.Context, req testcontainers.ContainerRequest, port nat.Port) (*Container, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get %s host: %w", req.Image, err)
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get %s port: %w", req.Image, err)
	}

	return &Container{Container: container, Host: host, Port: mapped.Port()}, nil
}

// StartMongo starts a MongoDB container; URI connects as root against the
// admin auth database.
func StartMongo(ctx context.Context, cfg ContainerConfig) (*Container, error) {
	c, err := start(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:" + cfg.MongoDBVersion,
		ExposedPorts: []string{"27017/tcp"},
		Env: map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": "test",
			"MONGO_INITDB_ROOT_PASSWORD": "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Waiting for connections"),
			wait.ForListeningPort("27017/tcp"),
		).WithDeadline(60 * time.Second),
	}, "27017/tcp")
	if err != nil {
		return nil, err
	}

	c.URI = fmt.Sprintf("mongodb://test:test@%s:%s/?authSource=admin", c.Host, c.Port)
	return c, nil
}

// StartRedis starts a Redis container; URI is the host:port address.
func StartRedis(ctx context.Context, cfg ContainerConfig) (*Container, error) {
	c, err := start(ctx, testcontainers.ContainerRequest{
		Image:        "redis:" + cfg.RedisVersion,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort("6379/tcp"),
		).WithDeadline(30 * time.Second),
	}, "6379/tcp")
	if err != nil {
		return nil, err
	}

	c.URI = c.Host + ":" + c.Port
	return c, nil
}

func StartRabbitMQ(ctx context.Context, cfg ContainerConfig) (*Container, error) {
	c, err := start(ctx, testcontainers.ContainerRequest{
		Image:        "rabbitmq:" + cfg.RabbitMQVersion,
		ExposedPorts: []string{"5672/tcp"},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": "test",
			"RABBITMQ_DEFAULT_PASS": "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Server startup complete"),
			wait.ForListeningPort("5672/tcp"),
		).WithDeadline(90 * time.Second),
	}, "5672/tcp")
	if err != nil {
		return nil, err
	}

	c.URI = fmt.Sprintf("amqp://test:test@%s:%s/", c.Host, c.Port)
	return c, nil
}
