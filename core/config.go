package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Environments
const (
	EnvDev  = "DEV" // local; default
	EnvTest = "TEST"
	EnvQA   = "QA"
	EnvProd = "PROD"
)

type (
	Config struct {
		Env             string `mapstructure:"-"`
		Build           string `mapstructure:"build"`
		AppName         string `mapstructure:"appName"`
		Debug           bool   `mapstructure:"debug"`
		TestMode        bool   `mapstructure:"testMode"`
		WorkDir         string `mapstructure:"workDir"`
		SecretKey       string `mapstructure:"secretKey" validate:"required"`
		FrontendBaseURL string `mapstructure:"frontendBaseURL"`
		RollbarToken    string `mapstructure:"rollbarToken"`

		PasswordResetTimeout time.Duration `mapstructure:"passwordResetTimeout"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		JWT      JWTConfig      `mapstructure:"jwt"`
		API      APIConfig      `mapstructure:"api"`
		Grades   GradesConfig   `mapstructure:"grades"`
		Mail     MailConfig     `mapstructure:"mail"`
	}

	ServerConfig struct {
		Host            string        `mapstructure:"host"`
		DebugHost       string        `mapstructure:"debugHost"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		DisableReqLogs  bool          `mapstructure:"disableReqLogs"`
	}

	DatabaseConfig struct {
		Engine        string `mapstructure:"engine"`
		Host          string `mapstructure:"host"`
		Port          string `mapstructure:"port"`
		Name          string `mapstructure:"name" validate:"required"`
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		AdminUser     string `mapstructure:"adminUser"`
		AdminPassword string `mapstructure:"adminPassword"`
		DisableTLS    bool   `mapstructure:"disableTLS"`
		MaxOpenConns  int    `mapstructure:"maxOpenConns" validate:"gte=0"`
		MaxIdleConns  int    `mapstructure:"maxIdleConns" validate:"gte=0"`
	}

	// JWTConfig is validated eagerly by NewConfig.
	JWTConfig struct {
		SecretKey              string `mapstructure:"secretKey" validate:"min=32"`
		Issuer                 string `mapstructure:"issuer" validate:"required"`
		Audience               string `mapstructure:"audience" validate:"required"`
		ExpiryMinutes          int    `mapstructure:"expiryMinutes" validate:"gt=0"`
		RefreshTokenExpiryDays int    `mapstructure:"refreshTokenExpiryDays" validate:"gt=0"`
		ClockSkewMinutes       int    `mapstructure:"clockSkewMinutes" validate:"gte=0"`
	}

	APIConfig struct {
		DefaultPageSize int `mapstructure:"defaultPageSize" validate:"gt=0,ltefield=MaxPageSize"`
		MaxPageSize     int `mapstructure:"maxPageSize" validate:"gt=0"`
		ExportLimit     int `mapstructure:"exportLimit" validate:"gt=0"`
	}

	GradesConfig struct {
		PassMark float64 `mapstructure:"passMark" validate:"gte=0,lte=100"`
	}

	MailConfig struct {
		DefaultFromEmail string `mapstructure:"defaultFromEmail" validate:"required"`
		SendgridAPIKey   string `mapstructure:"sendgridApiKey"`
	}
)

func (c DatabaseConfig) Address() string {
	if c.Port == "" {
		return c.Host
	}
	return net.JoinHostPort(c.Host, c.Port)
}

func (c JWTConfig) Expiry() time.Duration { return time.Duration(c.ExpiryMinutes) * time.Minute }

func (c JWTConfig) RefreshExpiry() time.Duration {
	return time.Duration(c.RefreshTokenExpiryDays) * 24 * time.Hour
}

func (c JWTConfig) ClockSkew() time.Duration { return time.Duration(c.ClockSkewMinutes) * time.Minute }

// DefaultFromEmail parses Mail.DefaultFromEmail, eg. `Masomo <noreply@masomo.cd>`.
func (c *Config) DefaultFromEmail() mail.Address {
	if addr, err := mail.ParseAddress(c.Mail.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: c.Mail.DefaultFromEmail}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Masomo")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("workDir", "")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("passwordResetTimeout", 3*24*time.Hour)

	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "masomo")
	v.SetDefault("database.user", "masomo")
	v.SetDefault("database.password", "masomo")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxOpenConns", 0)
	v.SetDefault("database.maxIdleConns", 2)

	v.SetDefault("jwt.secretKey", "uoxh2(h!x)#*c2(#yg4h^$cegm2emy-poq5-wer)enb$+57=dz&")
	v.SetDefault("jwt.issuer", "Masomo")
	v.SetDefault("jwt.audience", "Academia")
	v.SetDefault("jwt.expiryMinutes", 60)
	v.SetDefault("jwt.refreshTokenExpiryDays", 7)
	v.SetDefault("jwt.clockSkewMinutes", 1)

	v.SetDefault("api.defaultPageSize", 20)
	v.SetDefault("api.maxPageSize", 100)
	v.SetDefault("api.exportLimit", 10000)

	v.SetDefault("grades.passMark", 50.0)

	v.SetDefault("mail.defaultFromEmail", "Masomo <noreply@localhost>")
	v.SetDefault("mail.sendgridApiKey", "")
}

// NewConfig loads the configuration of the current ENV (DEV, TEST, QA or PROD) from
// defaults, `config/.env.<env>` and the environment, in increasing priority.
// Environment variables are prefixed with the env name, eg. `PROD_JWT_SECRETKEY`.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(strings.TrimSpace(os.Getenv("ENV")))
	switch env {
	case "":
		env = EnvDev
	case EnvDev, EnvTest, EnvQA, EnvProd:
	default:
		return nil, errors.Errorf("unknown ENV %q", env)
	}

	v := viper.New()
	setDefaults(v)
	if env == EnvTest {
		v.SetDefault("testMode", true)
	}
	if env == EnvQA || env == EnvProd {
		v.SetDefault("debug", false)
	}

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	conf.Env = env
	if conf.WorkDir == "" {
		conf.WorkDir = wd
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate checks the settings the app cannot start without.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			fe := vErrs[0]
			return errors.Errorf("invalid config: %s failed on %q (%s)", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// NewTestConfig returns the configuration used by tests, without reading the environment.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	v.Set("testMode", true)
	v.Set("debug", false)

	conf := new(Config)
	_ = v.Unmarshal(conf)
	conf.Env = EnvTest
	conf.WorkDir = Getwd()
	conf.Server.DisableReqLogs = true
	return conf
}
