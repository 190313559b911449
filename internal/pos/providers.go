// Package pos assembles the till service from its parts.
package pos

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos/cache"
	"github.com/tair/till-pos/internal/pos/cart"
	"github.com/tair/till-pos/internal/pos/credential"
	httpDelivery "github.com/tair/till-pos/internal/pos/delivery/http"
	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/internal/pos/report"
	"github.com/tair/till-pos/internal/pos/repository"
	"github.com/tair/till-pos/internal/pos/usecase/command"
	"github.com/tair/till-pos/internal/pos/usecase/query"
	"github.com/tair/till-pos/pkg/auth"
	"github.com/tair/till-pos/pkg/config"
)

// App is the wired service
type App struct {
	Store      *repository.Store
	Validator  *credential.Validator
	Aggregator *report.Aggregator
	Dashboard  *cache.DashboardCache
	Handler    *httpDelivery.Handler
}

// ProvideStore wraps the gorm connection
func ProvideStore(db *gorm.DB) *repository.Store {
	return repository.NewStore(db)
}

// ProvideProductRepository provides the product repository
func ProvideProductRepository(store *repository.Store) domain.ProductRepository {
	return store.Products()
}

// ProvideSaleRepository provides the sale repository
func ProvideSaleRepository(store *repository.Store) domain.SaleRepository {
	return store.Sales()
}

// ProvideUserRepository provides the user repository
func ProvideUserRepository(store *repository.Store) domain.UserRepository {
	return store.Users()
}

// ProvideReportRepository provides the report repository
func ProvideReportRepository(store *repository.Store) domain.ReportRepository {
	return store.Reports()
}

// ProvideHasher selects the configured password hasher
func ProvideHasher(cfg *config.Config) (credential.Hasher, error) {
	return credential.NewHasher(cfg.PasswordHasher)
}

// ProvideTokenManager creates the session token manager
func ProvideTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
}

// ProvideStockPolicy reads the stock underflow setting
func ProvideStockPolicy(cfg *config.Config) command.StockPolicy {
	return command.StockPolicy{AllowNegative: cfg.AllowNegativeStock}
}

// ProvideDashboardCache caches dashboards in Redis when a client is given
func ProvideDashboardCache(source cache.DashboardSource, client *redis.Client, cfg *config.Config) *cache.DashboardCache {
	return cache.NewDashboardCache(source, client, cfg.DashboardCacheTTL)
}

// ProvideSessions keeps session carts no longer than a token can live
func ProvideSessions(clock domain.Clock, cfg *config.Config) *cart.Sessions {
	return cart.NewSessions(clock, cfg.JWTTTL)
}

// LoginRateLimitPrefix namespaces login attempt counters in Redis
const LoginRateLimitPrefix = "pos:ratelimit:login:"

// ProvideLoginLimiter throttles login attempts per client; nil without Redis
func ProvideLoginLimiter(client *redis.Client, cfg *config.Config) *httpDelivery.RateLimiter {
	return httpDelivery.NewRateLimiter(client, LoginRateLimitPrefix, cfg.LoginRateLimit, cfg.LoginRateWindow)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStore,
	ProvideProductRepository,
	ProvideSaleRepository,
	ProvideUserRepository,
	ProvideReportRepository,
	wire.Bind(new(domain.Store), new(*repository.Store)),
	wire.Bind(new(httpDelivery.Pinger), new(*repository.Store)),
)

var CredentialSet = wire.NewSet(
	ProvideHasher,
	credential.NewValidator,
	ProvideTokenManager,
	wire.Bind(new(command.PasswordHasher), new(*credential.Validator)),
	wire.Bind(new(command.CredentialValidator), new(*credential.Validator)),
	wire.Bind(new(command.TokenIssuer), new(*auth.TokenManager)),
)

var CommandSet = wire.NewSet(
	ProvideStockPolicy,
	command.NewSaleMetrics,
	command.NewCommitSaleHandler,
	command.NewCreateProductHandler,
	command.NewUpdateProductHandler,
	command.NewDeleteProductHandler,
	command.NewCreateUserHandler,
	command.NewUpdateUserHandler,
	command.NewDeleteUserHandler,
	command.NewLoginUserHandler,
	wire.Struct(new(httpDelivery.Commands), "*"),
)

var QuerySet = wire.NewSet(
	report.NewAggregator,
	ProvideDashboardCache,
	query.NewGetProductHandler,
	query.NewListProductsHandler,
	query.NewListSalesHandler,
	query.NewGetSaleDetailsHandler,
	query.NewListUsersHandler,
	query.NewGetDashboardHandler,
	wire.Bind(new(cache.DashboardSource), new(*report.Aggregator)),
	wire.Bind(new(query.SaleDetailSource), new(*report.Aggregator)),
	wire.Bind(new(query.CachedDashboard), new(*cache.DashboardCache)),
	wire.Bind(new(httpDelivery.DashboardInvalidator), new(*cache.DashboardCache)),
	wire.Struct(new(httpDelivery.Queries), "*"),
)

var HandlerSet = wire.NewSet(
	ProvideSessions,
	ProvideLoginLimiter,
	httpDelivery.NewHandler,
	wire.Struct(new(App), "*"),
)
