package deps

import (
	"accounts/internal/config"
	"accounts/internal/core/domain/account"
	dl "accounts/internal/core/domain/logging"
	duow "accounts/internal/core/domain/unit_of_work"
	dbaccount "accounts/internal/db/account"
	uow "accounts/internal/db/unit_of_work"
	activationnoticelogger "accounts/internal/implementations/activation_notice_logger"
	"accounts/internal/implementations/email"
	"accounts/internal/implementations/logging"
	passwordhasher "accounts/internal/implementations/password_hasher"
	randomstringgenerator "accounts/internal/implementations/random_string_generator"
	"accounts/internal/rabbitmq"
	activationnotice "accounts/internal/rabbitmq/publishers/activation_notice"
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UnitOfWork        duow.UnitOfWork
	AccountRepository account.Repository

	PasswordHasher           account.PasswordHasher
	ActivationTokenGenerator account.ActivationTokenGenerator
	ActivationNoticeSender   account.ActivationNoticeSender

	// EmailSender mails notices directly. It is what the notice mailer
	// consumes the queue with, and the notice sender for the "ses" gateway.
	EmailSender account.ActivationNoticeSender
}

// InitDeps prepares everything the HTTP server needs.
func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()

	closeLogger := deps.initLogger()
	closePgxPool := deps.initPgxPool()

	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
	deps.AccountRepository = dbaccount.NewPgxRepository(deps.DB)
	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.ActivationTokenGenerator = randomstringgenerator.NewGenerator(deps.Config.ActivationTokenLength)

	closeNoticeSender := deps.initActivationNoticeSender()

	return deps, shutdownFunc(
		closeNoticeSender,
		closePgxPool,
		closeLogger,
	)
}

// InitMailerDeps prepares the notice mailer, which takes notices off the
// RabbitMQ queue and mails them through SES.
func InitMailerDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()
	if err := deps.Config.ValidateRabbitmqSettings(); err != nil {
		panic(err)
	}
	if !deps.Config.IsTestMode {
		if err := deps.Config.ValidateEmailSettings(); err != nil {
			panic(err)
		}
	}

	closeLogger := deps.initLogger()
	closeRabbitmqConn := deps.initRabbitmqConnection()
	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.initEmailSender()

	return deps, shutdownFunc(
		closeRabbitmqConn,
		closeLogger,
	)
}

func shutdownFunc(closeFuncs ...func()) func() {
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

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(context.Background(), awsConfigOptions(deps.Config)...)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

// awsConfigOptions disables SDK retries. A notice is sent while the
// registration transaction is open, so a retried request could mail a
// second notice for the same account and keep the transaction waiting.
func awsConfigOptions(cfg *config.Config) []func(*awsConfig.LoadOptions) error {
	return []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AwsAccessKey,
				cfg.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 1)
		}),
	}
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.IsTestMode)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
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

// initEmailSender falls back to logging notices in test mode, so that no
// real e-mail leaves a test environment.
func (deps *Deps) initEmailSender() {
	if deps.Config.IsTestMode {
		deps.EmailSender = activationnoticelogger.New(deps.Logger)
		return
	}
	deps.initAwsConfig()
	deps.EmailSender = email.NewEmailSender(
		deps.AwsConfig,
		deps.Config.AwsEmailSender,
		deps.Config.AwsEmailActivateAccountTemplate,
		deps.Config.AwsEmailActivationUrl,
	)
}

func (deps *Deps) initActivationNoticeSender() func() {
	switch deps.Config.NotificationGateway {
	case config.RabbitMQ:
		closeRabbitmqConn := deps.initRabbitmqConnection()
		closePublisher := deps.initRabbitmqActivationNoticePublisher()
		return func() {
			closePublisher()
			closeRabbitmqConn()
		}
	default:
		deps.initEmailSender()
		deps.ActivationNoticeSender = deps.EmailSender
		return func() {}
	}
}

func (deps *Deps) initRabbitmqActivationNoticePublisher() func() {
	rabbitmqChannel, err := deps.Rabbitmq.ConfirmChannel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqActivationNoticeQueue
	deadLetterQueue := deps.Config.RabbitmqActivationNoticeDeadLetterQueue
	if _, err = rabbitmqChannel.DeclareQueueWithDeadLetter(queue, deadLetterQueue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	deps.ActivationNoticeSender = activationnotice.NewRabbitMQ(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.Config.RabbitmqPublishConfirmTimeout,
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down activation notice publisher.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Activation notice publisher shut down.")
	}
}
