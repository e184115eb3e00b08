package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	AppPort  string
	LogLevel string

	DBDriver   string
	MySQLHost  string
	MySQLPort  string
	MySQLDB    string
	MySQLUser  string
	MySQLPass  string
	SQLitePath string

	RedisAddr     string
	RedisDB       int
	EventsChannel string

	IdempTTLSecs int
	JWTSecret    string

	FactoryAddress string
	CustodyAddress string
	FeeCollector   string
	OperatorList   string

	OriginationFeeBps int64
	InterestFeeBps    int64
	ClaimBaseURI      string
	AssetsFile        string

	KeeperSchedule string
	KeeperAccount  string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "lenoa"),
		MySQLUser:  getenv("MYSQL_USER", "lenoa"),
		MySQLPass:  getenv("MYSQL_PASS", "lenoa"),
		SQLitePath: getenv("SQLITE_PATH", "lenoa.db"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:       int(getint("REDIS_DB", 0)),
		EventsChannel: getenv("EVENTS_CHANNEL", "lenoa:events"),

		IdempTTLSecs: int(getint("IDEMPOTENCY_TTL_SECONDS", 300)),
		JWTSecret:    os.Getenv("JWT_SECRET"),

		FactoryAddress: getenv("FACTORY_ADDRESS", "0x000000000000000000000000000000000000fac7"),
		CustodyAddress: getenv("CUSTODY_ADDRESS", "0x000000000000000000000000000000000000c057"),
		FeeCollector:   getenv("FEE_COLLECTOR", "0x000000000000000000000000000000000000fee5"),
		OperatorList:   os.Getenv("OPERATORS"),

		OriginationFeeBps: getint("ORIGINATION_FEE_BPS", 50),
		InterestFeeBps:    getint("INTEREST_FEE_BPS", 500),
		ClaimBaseURI:      getenv("CLAIM_BASE_URI", "https://lenoa.app/api/nft"),
		AssetsFile:        os.Getenv("ASSETS_FILE"),

		KeeperSchedule: getenv("KEEPER_SCHEDULE", "@every 1m"),
		KeeperAccount:  os.Getenv("KEEPER_ACCOUNT"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("invalid IDEMPOTENCY_TTL_SECONDS %d", c.IdempTTLSecs)
	}

	for _, a := range []struct{ key, val string }{
		{"FACTORY_ADDRESS", c.FactoryAddress},
		{"CUSTODY_ADDRESS", c.CustodyAddress},
		{"FEE_COLLECTOR", c.FeeCollector},
	} {
		if err := nonZeroAddress(a.key, a.val); err != nil {
			return err
		}
	}
	if c.Factory() == c.Custody() {
		return errors.New("FACTORY_ADDRESS and CUSTODY_ADDRESS must differ")
	}
	if c.KeeperAccount != "" {
		if err := nonZeroAddress("KEEPER_ACCOUNT", c.KeeperAccount); err != nil {
			return err
		}
	}
	for _, op := range splitList(c.OperatorList) {
		if err := nonZeroAddress("OPERATORS", op); err != nil {
			return err
		}
	}

	for _, b := range []struct {
		key string
		val int64
	}{
		{"ORIGINATION_FEE_BPS", c.OriginationFeeBps},
		{"INTEREST_FEE_BPS", c.InterestFeeBps},
	} {
		if b.val < 0 || b.val > 10_000 {
			return fmt.Errorf("invalid %s %d: want 0..10000", b.key, b.val)
		}
	}
	return nil
}

func nonZeroAddress(key, raw string) error {
	if !common.IsHexAddress(raw) {
		return fmt.Errorf("invalid %s %q", key, raw)
	}
	if common.HexToAddress(raw) == (common.Address{}) {
		return fmt.Errorf("%s must not be the zero address", key)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Factory() common.Address   { return common.HexToAddress(c.FactoryAddress) }
func (c *Config) Custody() common.Address   { return common.HexToAddress(c.CustodyAddress) }
func (c *Config) Collector() common.Address { return common.HexToAddress(c.FeeCollector) }
func (c *Config) KeeperEnabled() bool       { return c.KeeperAccount != "" }
func (c *Config) Keeper() common.Address    { return common.HexToAddress(c.KeeperAccount) }

func (c *Config) Operators() []common.Address {
	list := splitList(c.OperatorList)
	out := make([]common.Address, 0, len(list))
	for _, op := range list {
		out = append(out, common.HexToAddress(op))
	}
	return out
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}
