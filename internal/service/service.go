// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the storage layer.
package service

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/oakhollow/camp-registration/internal/storage"
)

// Service orchestrates availability reads, promo administration,
// registration intake, and the payment-confirmation workflow.
type Service struct {
	store storage.Store
	log   *zap.Logger
	ids   *snowflake.Node
	now   func() time.Time
}

// New constructs a Service with its dependencies.
func New(store storage.Store, log *zap.Logger, ids *snowflake.Node) *Service {
	return &Service{
		store: store,
		log:   log,
		ids:   ids,
		now:   func() time.Time { return time.Now().UTC() },
	}
}
