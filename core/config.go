package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Portal   PortalConfig
	}

	ServerConfig struct {
		Host               string
		Port               int
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		CookieName         string
	}

	DatabaseConfig struct {
		Engine        string // inmem | postgres
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	PortalConfig struct {
		DefaultCollege    string // used when no college is loaded
		QuickLoginCollege string
		QuickLoginEnabled bool
		DemoBatch         string
		FixturesPath      string
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) InMemory() bool {
	return c.Engine == "" || c.Engine == "inmem"
}

// NewConfig reads the configuration from the environment.
// `config/.env.<env>` is loaded first when it exists.
func NewConfig() *Config {
	conf := viper.New()

	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "NBA OBE Portal")
	conf.SetDefault("secretKey", "k3s9-fq)wb!nz+41=pc&e2ab(r!x)#*q8(#lo6h^$ovxn1aps")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("serverDebugHost", "localhost:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 12*time.Hour)
	conf.SetDefault("cookieName", "portal_token")

	conf.SetDefault("dbEngine", "inmem")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", 5432)
	conf.SetDefault("dbName", "obeportal")
	conf.SetDefault("dbUser", "obeportal")
	conf.SetDefault("dbPassword", "obeportal")
	conf.SetDefault("dbAdminUser", "")
	conf.SetDefault("dbAdminPassword", "")
	conf.SetDefault("dbDisableTLS", true)

	conf.SetDefault("defaultCollege", "CUIET")
	conf.SetDefault("quickLoginCollege", "CUIET")
	conf.SetDefault("quickLoginEnabled", true)
	conf.SetDefault("demoBatch", "2025-2029")
	conf.SetDefault("fixturesPath", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			Port:               conf.GetInt("serverPort"),
			DebugHost:          conf.GetString("serverDebugHost"),
			ShutdownTimeout:    conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
			CookieName:         conf.GetString("cookieName"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetInt("dbPort"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Portal: PortalConfig{
			DefaultCollege:    conf.GetString("defaultCollege"),
			QuickLoginCollege: conf.GetString("quickLoginCollege"),
			QuickLoginEnabled: conf.GetBool("quickLoginEnabled"),
			DemoBatch:         conf.GetString("demoBatch"),
			FixturesPath:      conf.GetString("fixturesPath"),
		},
	}
}

// NewTestConfig returns the configuration used by tests; the environment is not read.
func NewTestConfig() *Config {
	return &Config{
		AppName:   "NBA OBE Portal",
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		SecretKey: "secret",
		Server: ServerConfig{
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: time.Hour,
			CookieName:         "portal_token",
		},
		Database: DatabaseConfig{Engine: "inmem"},
		Portal: PortalConfig{
			DefaultCollege:    "CUIET",
			QuickLoginCollege: "CUIET",
			QuickLoginEnabled: true,
			DemoBatch:         "2025-2029",
		},
	}
}
