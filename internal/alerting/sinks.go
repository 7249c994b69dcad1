package alerting

import (
	"context"

	"PolyWatch/internal/domain/models"
	domrepo "PolyWatch/internal/domain/repository"
)

// PublisherSink delivers alerts through a message publisher (Kafka).
type PublisherSink struct {
	pub domrepo.Publisher
}

func NewPublisherSink(pub domrepo.Publisher) *PublisherSink {
	return &PublisherSink{pub: pub}
}

func (s *PublisherSink) Deliver(ctx context.Context, alerts []models.Alert) error {
	return s.pub.PublishAlerts(ctx, alerts)
}

// StorageSink persists alerts to alert storage.
type StorageSink struct {
	store domrepo.AlertStorage
}

func NewStorageSink(store domrepo.AlertStorage) *StorageSink {
	return &StorageSink{store: store}
}

func (s *StorageSink) Deliver(ctx context.Context, alerts []models.Alert) error {
	return s.store.StoreBatch(ctx, alerts)
}
