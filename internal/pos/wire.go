//go:build wireinject
// +build wireinject

package pos

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/config"
)

// InitializeApp wires the till service with all dependencies
func InitializeApp(
	db *gorm.DB,
	cfg *config.Config,
	clock domain.Clock,
	client *redis.Client,
	reg prometheus.Registerer,
) (*App, error) {
	wire.Build(
		RepositorySet,
		CredentialSet,
		CommandSet,
		QuerySet,
		HandlerSet,
	)
	return nil, nil
}
