package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       Server      `mapstructure:"server"`
	Postgres     Postgres    `mapstructure:"postgres"`
	Broker       Broker      `mapstructure:"broker"`
	Cron         Cron        `mapstructure:"cron"`
	Relay        RelayConfig `mapstructure:"relay"`
	HTTPClient   HTTPClient  `mapstructure:"httpClient"`
	Health       Health      `mapstructure:"health"`
	Auth         Auth        `mapstructure:"auth"`
	LoggingLevel string      `mapstructure:"logging-level"`
}

type Server struct {
	Port          string `mapstructure:"port"`
	SwaggerUrl    string `mapstructure:"swagger_json"`
	SwaggerHost   string `mapstructure:"swagger_host"`
	SwaggerSchema string `mapstructure:"swagger_schema"`
	BodyLimit     int    `mapstructure:"body_limit"`
}

type Postgres struct {
	ConnString     string `mapstructure:"conn_string"`
	MaxConnections int32  `mapstructure:"max_connections"`
}

type Broker struct {
	Kafka Kafka `mapstructure:"kafka"`
}

type Kafka struct {
	Brokers      string `mapstructure:"brokers"`
	ReaderTopic  string `mapstructure:"readerTopic"`
	ReaderUsr    string `mapstructure:"readerUsr"`
	ReaderUsrPwd string `mapstructure:"readerUsrPwd"`
	WriterTopic  string `mapstructure:"writerTopic"`
	WriterUsr    string `mapstructure:"writerUsr"`
	WriterUsrPwd string `mapstructure:"writerUsrPwd"`
	MaxAttempts  int    `mapstructure:"maxAttempts"`
}

type Cron struct {
	// Расписание очистки просроченных manage-токенов.
	// Приоритет: если указан Schedule, используется он, иначе Interval
	Schedule string `mapstructure:"schedule"` // формат cron, например "0 3 * * *"
	Interval string `mapstructure:"interval"` // формат "@every 1h"
}

type RelayConfig struct {
	Workers     int           `mapstructure:"workers"`
	BatchSize   int           `mapstructure:"batchSize"`
	Lease       time.Duration `mapstructure:"lease"`
	PollPeriod  time.Duration `mapstructure:"pollPeriod"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
}

// Health - настройки агрегатора health-проверок
type Health struct {
	// Период фонового опроса зависимостей. По умолчанию 30s.
	PollInterval time.Duration `mapstructure:"pollInterval"`
	// Таймаут одного цикла проверок
	ProbeTimeout time.Duration `mapstructure:"probeTimeout"`
	// Необязательный URL downstream API для проверки с service=api
	APIProbeURL string `mapstructure:"apiProbeURL"`
}

// Auth - политика редиректов и интеграция с identity provider
type Auth struct {
	AdminPath  string `mapstructure:"adminPath"`  // по умолчанию /admin
	MemberPath string `mapstructure:"memberPath"` // по умолчанию /member
	// Роль в client principal, дающая права администратора (политика aad)
	AdminRole string `mapstructure:"adminRole"`
	// Список включенных identity providers через запятую: aad,auth0,google
	Providers string `mapstructure:"providers"`
	// Origin сервиса для построения абсолютных redirect URL, например https://community.example.org
	Origin string `mapstructure:"origin"`
}

type HTTPClient struct {
	//конфиг клиента
	ConnectTimeout        time.Duration `mapstructure:"connectTimeout"`        // TCP коннект
	TLSHandshakeTimeout   time.Duration `mapstructure:"TLSHandshakeTimeout"`   // TLS рукопожатие
	ResponseHeaderTimeout time.Duration `mapstructure:"responseHeaderTimeout"` // ожидание заголовков ответа
	ExpectContinueTimeout time.Duration `mapstructure:"expectContinueTimeout"` // 100-continue

	// Пул соединений
	IdleConnTimeout     time.Duration `mapstructure:"idleConnTimeout"`
	MaxIdleConns        int           `mapstructure:"maxIdleConns"`
	MaxIdleConnsPerHost int           `mapstructure:"maxIdleConnsPerHost"`
	MaxConnsPerHost     int           `mapstructure:"maxConnsPerHost"`
	KeepAlives          bool          `mapstructure:"keepAlives"`

	// Общий таймаут клиента. 0 — контролируем дедлайном через context.
	ClientTimeout time.Duration `mapstructure:"clientTimeout"`

	// Прочее
	UserAgent  string `mapstructure:"userAgent"`
	MaxRetries int    `mapstructure:"maxRetries"`

	// SSL/TLS настройки
	InsecureSkipVerify bool `mapstructure:"insecureSkipVerify"` // отключить проверку SSL сертификатов
}

func NewConfig() (Config, error) {
	viper.AutomaticEnv()
	// Настраиваем замену точек и дефисов на подчеркивания для переменных окружения
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	var conf Config
	err := viper.ReadInConfig()
	// Игнорируем ошибку, если файл не найден - используем только переменные окружения
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return conf, err
		}
	}

	if err = viper.Unmarshal(&conf); err != nil {
		return conf, err
	}

	applyDefaults(&conf)

	return conf, nil
}

func applyDefaults(conf *Config) {
	if conf.Health.PollInterval <= 0 {
		conf.Health.PollInterval = 30 * time.Second
	}
	if conf.Health.ProbeTimeout <= 0 {
		conf.Health.ProbeTimeout = 3 * time.Second
	}
	if conf.Auth.AdminPath == "" {
		conf.Auth.AdminPath = "/admin"
	}
	if conf.Auth.MemberPath == "" {
		conf.Auth.MemberPath = "/member"
	}
	if conf.Auth.AdminRole == "" {
		conf.Auth.AdminRole = "administrator"
	}
	if conf.Auth.Providers == "" {
		conf.Auth.Providers = "aad,auth0,google"
	}
}
