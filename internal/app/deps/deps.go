package deps

import (
	"context"
	"database/sql"
	"fmt"
	"notesauth/internal/config"
	dl "notesauth/internal/core/domain/logging"
	drl "notesauth/internal/core/domain/rate_limiter"
	duow "notesauth/internal/core/domain/unit_of_work"
	"notesauth/internal/core/domain/user"
	"notesauth/internal/db"
	uow "notesauth/internal/db/unit_of_work"
	dbuser "notesauth/internal/db/user"
	accesstoken "notesauth/internal/implementations/access_token"
	"notesauth/internal/implementations/email"
	"notesauth/internal/implementations/logging"
	passwordhasher "notesauth/internal/implementations/password_hasher"
	passwordresettoken "notesauth/internal/implementations/password_reset_token"
	ratelimiter "notesauth/internal/implementations/rate_limiter"
	"notesauth/internal/rabbitmq"
	passwordresettokensender "notesauth/internal/rabbitmq/publishers/password_reset_token_sender"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	SQLite   *sql.DB
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UnitOfWork     duow.UnitOfWork
	UserRepository user.UserRepository

	RateLimiter drl.RateLimiter

	PasswordHasher              user.PasswordHasher
	PasswordResetTokenGenerator user.PasswordResetTokenGenerator
	PasswordResetTokenSender    user.PasswordResetTokenSender
	AccessTokenIssuer           user.AccessTokenIssuer
}

// InitDeps builds everything the HTTP server and the sweeper need.
func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig(config.Load)

	closeLogger := deps.initLogger()
	closeDB := deps.initDB()
	closeRedisClient := deps.initRedisClient()

	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.RateLimiter = deps.initRateLimiter()
	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.PasswordResetTokenGenerator = passwordresettoken.NewGenerator()
	deps.AccessTokenIssuer = accesstoken.NewJWT(
		deps.Config.Secret,
		deps.Config.AccessTokenValidDuration,
		deps.Now,
	)

	closeSender := deps.initPasswordResetTokenSender()

	return deps, closeAll(
		closeSender,
		closeRedisClient,
		closeDB,
		closeLogger,
	)
}

// InitMailerDeps builds what cmd/mailer needs: config, logger, SES and RabbitMQ.
func InitMailerDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig(config.LoadMailer)
	deps.initAwsConfig()

	closeLogger := deps.initLogger()
	closeRabbitmqConn := deps.initRabbitmqConnection()

	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.PasswordResetTokenSender = email.NewEmailSender(
		deps.AwsConfig,
		deps.Config.AwsEmailSender,
		deps.Config.AwsEmailPasswordResetTemplate,
	)

	return deps, closeAll(closeRabbitmqConn, closeLogger)
}

func closeAll(closeFuncs ...func()) func() {
	return func() {
		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
	}
}

func (deps *Deps) initConfig(load func(files ...string) (*config.Config, error)) {
	cfg, err := load()
	if err != nil {
		panic(err)
	}
	deps.Config = cfg
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger, err := logging.NewZapLogger(deps.Config.LogLevel)
	if err != nil {
		panic(err)
	}
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initDB() func() {
	if deps.Config.AutoMigrate {
		if err := db.ApplyMigrations(deps.Config.DBDriver, deps.Config.DatabaseURL); err != nil {
			deps.Logger.Error(context.Background(), "Could not apply migrations.", dl.Entry("err", err))
			panic(err)
		}
		deps.Logger.Info(context.Background(), "Migrations applied.", dl.Entry("driver", deps.Config.DBDriver))
	}

	if deps.Config.DBDriver == db.DriverSQLite {
		return deps.initSQLite()
	}
	return deps.initPgxPool()
}

func (deps *Deps) initPgxPool() func() {
	pool, err := db.ConnectPostgres(context.Background(), deps.Config.DatabaseURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = pool
	deps.UnitOfWork = uow.NewPgxUnitOfWork(pool)
	deps.UserRepository = dbuser.NewPgxRepository(pool)
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		pool.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initSQLite() func() {
	sqlite, err := db.OpenSQLite(deps.Config.DatabaseURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not open SQLite database.", dl.Entry("err", err))
		panic(err)
	}
	deps.SQLite = sqlite
	deps.UnitOfWork = uow.NewSqliteUnitOfWork(sqlite)
	deps.UserRepository = dbuser.NewSqliteRepository(sqlite)
	return func() {
		deps.Logger.Info(context.Background(), "Closing SQLite database.")
		sqlite.Close()
		deps.Logger.Info(context.Background(), "SQLite database closed.")
	}
}

func (deps *Deps) initRedisClient() func() {
	if deps.Config.RedisURL == "" {
		return func() {}
	}
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRateLimiter() drl.RateLimiter {
	// Config allows running without Redis in TEST_MODE only.
	if deps.Redis == nil {
		deps.Logger.Warning(context.Background(), "Redis is not configured, rate limiting is disabled.")
		return ratelimiter.NewAllowAlways()
	}
	return ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
}

func (deps *Deps) initRabbitmqConnection() func() {
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initPasswordResetTokenSender() func() {
	deps.Logger.Info(
		context.Background(),
		"Password reset delivery selected.",
		dl.Entry("delivery", deps.Config.PasswordResetDelivery),
	)

	switch deps.Config.PasswordResetDelivery {
	case config.DeliveryLog:
		deps.PasswordResetTokenSender = email.NewLogSender(deps.Logger)
		return func() {}
	case config.DeliverySES:
		deps.initAwsConfig()
		deps.PasswordResetTokenSender = email.NewEmailSender(
			deps.AwsConfig,
			deps.Config.AwsEmailSender,
			deps.Config.AwsEmailPasswordResetTemplate,
		)
		return func() {}
	case config.DeliveryRabbitmq:
		return deps.initRabbitmqPasswordResetTokenSender()
	}
	panic(fmt.Sprintf("unknown password reset delivery %q", deps.Config.PasswordResetDelivery))
}

func (deps *Deps) initRabbitmqPasswordResetTokenSender() func() {
	closeRabbitmqConn := deps.initRabbitmqConnection()

	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	queue := deps.Config.RabbitmqPasswordResetQueue
	if err := rabbitmqChannel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not create RabbitMQ queue.",
			dl.Entry("queue", queue),
			dl.Entry("err", err),
		)
		panic(err)
	}

	deps.PasswordResetTokenSender = passwordresettokensender.NewRabbitMQ(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.Now,
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down password reset token publisher.")
		rabbitmqChannel.Close()
		closeRabbitmqConn()
		deps.Logger.Info(context.Background(), "Password reset token publisher shut down.")
	}
}
