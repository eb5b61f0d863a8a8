package providers

import (
	"context"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/config"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/infrastructure/cache"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/infrastructure/database"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/infrastructure/repository"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/infrastructure/repository/memory"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/present/rest/middleware"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/query"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/service"
	"github.com/SaifuddinSaifee/cmu-housing-app/internal/usecase"
	"github.com/SaifuddinSaifee/cmu-housing-app/jwt"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

func NewMemcache(addr string) *memcache.Client {
	return database.NewMemcached(addr)
}

func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// Stores is the set of storage adapters the usecases run on.
type Stores struct {
	Identities usecase.IdentityRepository
	Listings   usecase.ListingRepository
	Owners     usecase.OwnerSummaryCache
	Limiter    usecase.LoginLimiter

	closers []func() error
}

func (s Stores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewStores connects the configured storage driver. Postgres mode uses Redis
// for login throttling when redisAddr is set and Memcached for owner
// summaries when memcachedAddr is set; each falls back to an in-process
// cache otherwise.
func NewStores(ctx context.Context, conf config.Config, logger *slog.Logger) (Stores, error) {
	var stores Stores
	switch conf.Server.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		stores.Identities = store
		stores.Listings = store.Listings()
	case config.StoragePostgres:
		db, err := NewDatabase(conf.Server)
		if err != nil {
			return Stores{}, errors.Wrap(err, "failed to connect database")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return Stores{}, errors.Wrap(err, "failed to get sql.DB")
		}
		stores.closers = append(stores.closers, sqlDB.Close)
		stores.Identities = repository.NewIdentityRepository(db, logger)
		stores.Listings = repository.NewListingRepository(db, logger)
	default:
		return Stores{}, errors.Errorf("unknown storage driver %q", conf.Server.Storage)
	}

	if conf.Server.Storage == config.StoragePostgres && conf.Server.RedisAddr != "" {
		rdb := NewRedis(conf.Server)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WarnContext(ctx, "redis unreachable at startup", slog.String("module", "providers"), slog.String("error", err.Error()))
		}
		stores.closers = append(stores.closers, rdb.Close)
		stores.Limiter = service.NewLoginThrottle(rdb, conf.Auth.LoginMaxAttempts, conf.Auth.LoginLockout)
	} else {
		stores.Limiter = cache.NewLocalLoginLimiter(conf.Auth.LoginMaxAttempts, conf.Auth.LoginLockout)
	}

	if conf.Server.Storage == config.StoragePostgres && conf.Server.MemcachedAddr != "" {
		stores.Owners = cache.NewMemcachedOwnerCache(NewMemcache(conf.Server.MemcachedAddr), conf.Listing.OwnerCacheTTL)
	} else {
		stores.Owners = cache.NewLocalOwnerCache(conf.Listing.OwnerCacheTTL)
	}
	return stores, nil
}

// NewIdentityUsecase builds the identity usecase with the configured
// credential store and token issuer.
func NewIdentityUsecase(conf config.Auth, stores Stores) (*usecase.IdentityUsecase, *jwt.Issuer, error) {
	issuer, err := NewIssuer(conf)
	if err != nil {
		return nil, nil, err
	}
	credentials := service.NewCredentialStore(conf.BcryptCost)
	return usecase.NewIdentityUsecase(
		stores.Identities,
		stores.Listings,
		credentials,
		issuer,
		stores.Limiter,
		stores.Owners,
	), issuer, nil
}

func NewIssuer(conf config.Auth) (*jwt.Issuer, error) {
	return jwt.NewIssuer([]byte(conf.JWTSecret), conf.TokenTTL, jwt.WithLeeway(conf.ClockSkew))
}

// NewHandler wires the REST handler on top of stores.
func NewHandler(conf config.Config, stores Stores) (*rest.Handler, error) {
	identityUsecase, issuer, err := NewIdentityUsecase(conf.Auth, stores)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create token issuer")
	}
	listingUsecase := usecase.NewListingUsecase(
		stores.Listings,
		stores.Identities,
		stores.Owners,
		query.NewBuilder(conf.Listing.DefaultLimit, conf.Listing.MaxLimit),
	)
	authService := service.NewAuthService(issuer, service.NewIdentityResolver(stores.Identities))
	authMiddleware := middleware.NewAuthMiddleware(authService)

	return rest.NewHandler(identityUsecase, listingUsecase, authMiddleware), nil
}
