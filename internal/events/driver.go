package events

import (
	"fmt"

	"storefront/internal/config"
	"storefront/pkg/kafka"
	"storefront/pkg/rabbitmq"

	"go.uber.org/zap"
)

// NewPublisher connects the broker selected by EVENTS_DRIVER.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (Publisher, error) {
	switch cfg.EventsDriver {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
		}, logger.Named("rabbitmq"))
		if err != nil {
			return nil, err
		}
		return client, nil
	case "kafka":
		return kafka.NewProducer(kafka.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, logger.Named("kafka")), nil
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.EventsDriver)
	}
}
