//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"piracy_tracker/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) consumeOne(queue string) []byte {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	deliveries, err := ch.Consume(queue, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case d := <-deliveries:
		return d.Body
	case <-time.After(10 * time.Second):
		s.FailNow("no message received")
		return nil
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange",
		RoutingKey: "test-routing-key",
		QueueName:  "test-queue",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.NoError(err)
	s.NotNil(pub)

	err = pub.Close()
	s.NoError(err)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_SiteAdded() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-site",
		RoutingKey: "test-routing-key-site",
		QueueName:  "test-queue-site",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	site := &domain.Site{
		ID:       1,
		Domain:   "pirate-x.example",
		Priority: domain.PriorityCritical,
		Status:   domain.StatusActive,
	}

	err = pub.PublishSiteAdded(s.ctx, site)
	s.Require().NoError(err)

	body := s.consumeOne(cfg.QueueName)

	var msg SiteAddedMessage
	s.Require().NoError(json.Unmarshal(body, &msg))
	s.Equal("site_added", msg.Action)
	s.Equal("pirate-x.example", msg.Site.Domain)
	s.Equal(domain.PriorityCritical, msg.Site.Priority)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_RunCompleted() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-run",
		RoutingKey: "test-routing-key-run",
		QueueName:  "test-queue-run",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	result := &domain.SyncResult{
		Success:      true,
		SitesAdded:   2,
		SitesUpdated: 1,
		Timestamp:    time.Now().UTC(),
	}

	err = pub.PublishRunCompleted(s.ctx, result)
	s.Require().NoError(err)

	body := s.consumeOne(cfg.QueueName)

	var msg RunCompletedMessage
	s.Require().NoError(json.Unmarshal(body, &msg))
	s.Equal("sync_completed", msg.Action)
	s.Equal(2, msg.Result.SitesAdded)
	s.True(msg.Result.Success)
}
