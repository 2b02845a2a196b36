package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string
		WorkDir  string

		SecretKey          string
		JWTExpirationDelta time.Duration
		FrontendBaseURL    string

		defaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server  ServerConfig
		Mongo   MongoConfig
		Chatbot ChatbotConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugAddr       string
		ShutdownTimeout time.Duration
	}

	MongoConfig struct {
		URI     string
		Name    string
		Timeout time.Duration
	}

	ChatbotConfig struct {
		BaseURL string
		ApiKey  string
		Model   string
		Timeout time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Elimu")
	v.SetDefault("secretKey", "y8g#3mpx_2!)d+a(qwz54&u0o7h%ce9s-rv6bjf1kn$lt*i@")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugAddr", ":9000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("mongoURI", "mongodb://localhost:27017")
	v.SetDefault("mongoName", "elimu")
	v.SetDefault("mongoTimeout", 10*time.Second)
	v.SetDefault("chatbotBaseURL", "")
	v.SetDefault("chatbotModel", "gpt-3.5-turbo")
	v.SetDefault("chatbotTimeout", 30*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("env", env)
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("testMode"),
		Env:                v.GetString("env"),
		Build:              v.GetString("build"),
		AppName:            v.GetString("appName"),
		WorkDir:            wd,
		SecretKey:          v.GetString("secretKey"),
		JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		FrontendBaseURL:    v.GetString("frontendBaseURL"),
		defaultFromEmail:   v.GetString("defaultFromEmail"),
		SendgridApiKey:     v.GetString("sendgridApiKey"),
		RollbarToken:       v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Addr:            v.GetString("serverAddr"),
			DebugAddr:       v.GetString("serverDebugAddr"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Mongo: MongoConfig{
			URI:     v.GetString("mongoURI"),
			Name:    v.GetString("mongoName"),
			Timeout: v.GetDuration("mongoTimeout"),
		},
		Chatbot: ChatbotConfig{
			BaseURL: v.GetString("chatbotBaseURL"),
			ApiKey:  v.GetString("chatbotApiKey"),
			Model:   v.GetString("chatbotModel"),
			Timeout: v.GetDuration("chatbotTimeout"),
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

// NewTestConfig returns a Config suitable for unit tests: fixed secret key,
// test mode on and no external service credentials.
func NewTestConfig() *Config {
	return &Config{
		Debug:              true,
		TestMode:           true,
		Env:                "TEST",
		Build:              "test",
		AppName:            "Elimu",
		SecretKey:          "secret",
		JWTExpirationDelta: 7 * 24 * time.Hour,
		defaultFromEmail:   "noreply@localhost",
		Server:             ServerConfig{ShutdownTimeout: time.Second},
	}
}
