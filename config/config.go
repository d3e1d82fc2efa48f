package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram_Token      string
	Db_Conn_Str         string
	Rabbit_Url          string
	Admin_Ids           []int64
	Reports_Dir         string
	Reports_Keep        int
	BugSink_Enabled     bool
	BugSink_DSN         string
	BugSink_Environment string
	BugSink_Release     string
}

var config Config

func C() *Config {
	return &config
}

// IsAdmin reports whether the given Telegram user is on the admin allow-list
func (c *Config) IsAdmin(userId int64) bool {
	for _, id := range c.Admin_Ids {
		if id == userId {
			return true
		}
	}
	return false
}

func Init(file string) {
	log.Printf("[CONFIG] Initializing configuration from file: %s", file)

	viper.SetConfigName(file)
	viper.AddConfigPath(".")

	viper.SetDefault("Reports_Dir", "reports")
	viper.SetDefault("Reports_Keep", 3)

	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("Error reading config file: %s", err))
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		panic(fmt.Errorf("Error unmarshalling config: %s", err))
	}

	// The bot is useless without a token, refuse to start
	if config.Telegram_Token == "" {
		panic(fmt.Errorf("Telegram_Token is not set in %s", file))
	}

	if len(config.Admin_Ids) == 0 {
		log.Printf("[CONFIG] WARNING: Admin_Ids is empty, the admin panel will be unreachable")
	}

	log.Printf("[CONFIG] Configuration loaded successfully")
	log.Printf("[CONFIG] Database connection string configured")
	log.Printf("[CONFIG] RabbitMQ URL configured")
	log.Printf("[CONFIG] %d administrator(s) configured", len(config.Admin_Ids))
}
