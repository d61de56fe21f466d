package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env-default:"8080"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"true"`
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"teamvest"`
}

type AuthConfig struct {
	JwtSecret string `yaml:"jwt_secret" env:"JWT_SECRET" env-default:""`
}

type TelegramConfig struct {
	Enabled  bool    `yaml:"enabled" env-default:"false"`
	ApiKey   string  `yaml:"api_key" env-default:""`
	AdminIds []int64 `yaml:"admin_ids"`
}

type RankBatch struct {
	Enabled  bool   `yaml:"enabled" env-default:"true"`
	CronSpec string `yaml:"cron_spec" env-default:"0 3 * * *"`
}

type Config struct {
	Listen    Listen         `yaml:"listen"`
	Mongo     MongoConfig    `yaml:"mongo"`
	Auth      AuthConfig     `yaml:"auth"`
	Telegram  TelegramConfig `yaml:"telegram"`
	RankBatch RankBatch      `yaml:"rank_batch"`
	Env       string         `yaml:"env" env-default:"local"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
