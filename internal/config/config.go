package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ark-network/raffle/internal/core/application"
	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	localcoordinator "github.com/ark-network/raffle/internal/infrastructure/coordinator/local"
	"github.com/ark-network/raffle/internal/infrastructure/db"
	watermillbus "github.com/ark-network/raffle/internal/infrastructure/eventbus/watermill"
	scheduler "github.com/ark-network/raffle/internal/infrastructure/scheduler/gocron"
	"github.com/ark-network/raffle/pkg/oracle"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	supportedEventDbs = supportedType{
		"badger": {},
	}
	supportedDbs = supportedType{
		"badger": {},
		"sqlite": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
	supportedCoordinators = supportedType{
		"local": {},
	}
)

type Config struct {
	Datadir     string
	Port        uint32
	MetricsPort uint32
	LogLevel    int

	EventDbType     string
	DbType          string
	DbDir           string
	EventDbDir      string
	SchedulerType   string
	CoordinatorType string

	EntranceFee    string
	Interval       int64
	KeeperInterval int64
	RequestTimeout int64

	OperatorAddress      string
	SubscriptionId       uint64
	KeyHash              string
	RequestConfirmations uint16
	CallbackGasLimit     uint32
	NumWords             uint32
	// OracleKey is the hex private key the local coordinator signs its
	// randomness with. Fulfillments are accepted only if signed by it. A
	// random one is generated if empty.
	OracleKey string `json:"-"`
	// FulfillmentDelay is how long the local coordinator waits before
	// delivering the random words. Negative values leave the fulfillment to
	// an external caller.
	FulfillmentDelay time.Duration

	repo        ports.RepoManager
	eventBus    ports.EventBus
	coordinator ports.RandomnessCoordinator
	scheduler   ports.SchedulerService
	svc         application.Service
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir              = "DATADIR"
	Port                 = "PORT"
	MetricsPort          = "METRICS_PORT"
	LogLevel             = "LOG_LEVEL"
	EventDbType          = "EVENT_DB_TYPE"
	DbType               = "DB_TYPE"
	SchedulerType        = "SCHEDULER_TYPE"
	CoordinatorType      = "COORDINATOR_TYPE"
	EntranceFee          = "ENTRANCE_FEE"
	Interval             = "INTERVAL"
	KeeperInterval       = "KEEPER_INTERVAL"
	RequestTimeout       = "REQUEST_TIMEOUT"
	OperatorAddress      = "OPERATOR_ADDRESS"
	SubscriptionId       = "SUBSCRIPTION_ID"
	KeyHash              = "KEY_HASH"
	RequestConfirmations = "REQUEST_CONFIRMATIONS"
	CallbackGasLimit     = "CALLBACK_GAS_LIMIT"
	NumWords             = "NUM_WORDS"
	OracleKey            = "ORACLE_KEY"
	FulfillmentDelay     = "FULFILLMENT_DELAY"

	defaultDatadir         = appDataDir("raffled")
	DefaultPort            = 7070
	defaultMetricsPort     = 7071
	defaultLogLevel        = 4
	defaultEventDbType     = "badger"
	defaultDbType          = "sqlite"
	defaultSchedulerType   = "gocron"
	defaultCoordinatorType = "local"
	// 0.001 ether
	defaultEntranceFee          = "1000000000000000"
	defaultInterval             = 30
	defaultKeeperInterval       = 5
	defaultRequestTimeout       = 3600
	defaultSubscriptionId       = 1
	defaultKeyHash              = "0x474e34a077df58807dbe9c96d3c009b23b3c6d0cce433e59bbf5b34f823bc56c"
	defaultRequestConfirmations = 3
	defaultCallbackGasLimit     = 500000
	defaultNumWords             = 1
	defaultFulfillmentDelay     = 2 * time.Second
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("RAFFLE")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(MetricsPort, defaultMetricsPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(EventDbType, defaultEventDbType)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(SchedulerType, defaultSchedulerType)
	viper.SetDefault(CoordinatorType, defaultCoordinatorType)
	viper.SetDefault(EntranceFee, defaultEntranceFee)
	viper.SetDefault(Interval, defaultInterval)
	viper.SetDefault(KeeperInterval, defaultKeeperInterval)
	viper.SetDefault(RequestTimeout, defaultRequestTimeout)
	viper.SetDefault(SubscriptionId, defaultSubscriptionId)
	viper.SetDefault(KeyHash, defaultKeyHash)
	viper.SetDefault(RequestConfirmations, defaultRequestConfirmations)
	viper.SetDefault(CallbackGasLimit, defaultCallbackGasLimit)
	viper.SetDefault(NumWords, defaultNumWords)
	viper.SetDefault(FulfillmentDelay, defaultFulfillmentDelay)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	dbPath := filepath.Join(viper.GetString(Datadir), "db")

	return &Config{
		Datadir:              viper.GetString(Datadir),
		Port:                 viper.GetUint32(Port),
		MetricsPort:          viper.GetUint32(MetricsPort),
		LogLevel:             viper.GetInt(LogLevel),
		EventDbType:          viper.GetString(EventDbType),
		DbType:               viper.GetString(DbType),
		DbDir:                dbPath,
		EventDbDir:           dbPath,
		SchedulerType:        viper.GetString(SchedulerType),
		CoordinatorType:      viper.GetString(CoordinatorType),
		EntranceFee:          viper.GetString(EntranceFee),
		Interval:             viper.GetInt64(Interval),
		KeeperInterval:       viper.GetInt64(KeeperInterval),
		RequestTimeout:       viper.GetInt64(RequestTimeout),
		OperatorAddress:      viper.GetString(OperatorAddress),
		SubscriptionId:       viper.GetUint64(SubscriptionId),
		KeyHash:              viper.GetString(KeyHash),
		RequestConfirmations: viper.GetUint16(RequestConfirmations),
		CallbackGasLimit:     viper.GetUint32(CallbackGasLimit),
		NumWords:             viper.GetUint32(NumWords),
		OracleKey:            viper.GetString(OracleKey),
		FulfillmentDelay:     viper.GetDuration(FulfillmentDelay),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf("event db type not supported, please select one of: %s", supportedEventDbs)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if !supportedCoordinators.supports(c.CoordinatorType) {
		return fmt.Errorf(
			"coordinator type not supported, please select one of: %s", supportedCoordinators,
		)
	}
	if _, err := domain.ParseAmount(c.EntranceFee); err != nil {
		return fmt.Errorf("invalid entrance fee: %s", err)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("invalid interval, must be positive")
	}
	if c.KeeperInterval < 0 {
		return fmt.Errorf("invalid keeper interval, must not be negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid request timeout, must not be negative")
	}
	if len(c.KeyHash) <= 0 {
		return fmt.Errorf("missing key hash")
	}
	if c.NumWords <= 0 {
		return fmt.Errorf("invalid number of words, must be positive")
	}
	if len(c.OperatorAddress) > 0 {
		if _, err := domain.NormalizeAddress(c.OperatorAddress); err != nil {
			return fmt.Errorf("invalid operator address: %s", err)
		}
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.eventBusService(); err != nil {
		return err
	}
	if err := c.coordinatorService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	return c.appService()
}

func (c *Config) AppService() application.Service {
	return c.svc
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()
	logger.SetLevel(log.GetLevel())

	switch c.EventDbType {
	case "badger":
		eventStoreConfig = []interface{}{c.EventDbDir, logger}
	default:
		return fmt.Errorf("unknown event db type")
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	default:
		return fmt.Errorf("unknown db type")
	}

	if err := makeDirectoryIfNotExists(c.DbDir); err != nil {
		return fmt.Errorf("failed to create db dir: %s", err)
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) eventBusService() error {
	svc, err := watermillbus.NewEventBus()
	if err != nil {
		return err
	}

	c.eventBus = svc
	return nil
}

func (c *Config) coordinatorService() error {
	switch c.CoordinatorType {
	case "local":
		key, err := c.oracleKey()
		if err != nil {
			return err
		}
		svc, err := localcoordinator.NewCoordinator(localcoordinator.Config{
			OracleKey:        key,
			SubscriptionId:   c.SubscriptionId,
			FulfillmentDelay: c.FulfillmentDelay,
		})
		if err != nil {
			return err
		}
		c.coordinator = svc
		log.Infof("local randomness coordinator at %s", svc.Address())
		return nil
	default:
		return fmt.Errorf("unknown coordinator type")
	}
}

func (c *Config) schedulerService() error {
	switch c.SchedulerType {
	case "gocron":
		c.scheduler = scheduler.NewScheduler()
		return nil
	default:
		return fmt.Errorf("unknown scheduler type")
	}
}

func (c *Config) appService() error {
	entranceFee, err := domain.ParseAmount(c.EntranceFee)
	if err != nil {
		return err
	}

	svc, err := application.NewService(
		application.Config{
			EntranceFee:     entranceFee,
			Interval:        c.Interval,
			KeeperInterval:  c.KeeperInterval,
			RequestTimeout:  c.RequestTimeout,
			OperatorAddress: c.OperatorAddress,
			RandomnessRequest: ports.RandomnessRequest{
				KeyHash:          c.KeyHash,
				SubscriptionId:   c.SubscriptionId,
				MinConfirmations: c.RequestConfirmations,
				CallbackGasLimit: c.CallbackGasLimit,
				NumWords:         c.NumWords,
			},
		},
		c.repo, c.coordinator, c.eventBus, c.scheduler, clockwork.NewRealClock(),
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func (c *Config) oracleKey() (*secp256k1.PrivateKey, error) {
	if len(c.OracleKey) <= 0 {
		log.Warn("no oracle key provided, generating a random one")
		return secp256k1.GeneratePrivateKey()
	}
	return oracle.ParsePrivKey(c.OracleKey)
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil || len(home) <= 0 {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(home, "."+strings.ToLower(appName))
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
