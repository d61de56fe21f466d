package main

import (
	"flag"
	"log"
	"log/slog"
	"teamvest/bot"
	"teamvest/impl/auth"
	"teamvest/impl/core"
	"teamvest/internal/config"
	"teamvest/internal/dashboard"
	"teamvest/internal/database"
	"teamvest/internal/http-server/api"
	"teamvest/internal/projection"
	"teamvest/internal/rank"
	"teamvest/internal/reward"
	"teamvest/internal/scheduler"
	"teamvest/lib/logger"
	"teamvest/lib/sl"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)
	lg.Info("starting teamvest admin backend",
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
	)

	if !conf.Mongo.Enabled {
		log.Fatal("mongo connection is required")
	}
	db := database.NewMongoClient(conf)

	// The ops bot comes up first so every service below logs through the
	// Telegram forwarder.
	var opsBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		opsBot, err = bot.NewTgBot(conf.Telegram.ApiKey, conf.Telegram.AdminIds, db, lg)
		if err != nil {
			lg.Error("telegram bot init", sl.Err(err))
			opsBot = nil
		} else {
			lg = slog.New(logger.NewTelegramHandler(lg.Handler(), opsBot, slog.LevelError))
		}
	}

	rankService := rank.New(db, lg)
	rewardService := reward.New(db, lg)
	dashService := dashboard.New(db, lg)
	projEngine := projection.New(db, lg)

	handler := core.New(rankService, rewardService, dashService, projEngine, db, lg)
	handler.SetAuthService(auth.New(db, conf.Auth.JwtSecret))

	if opsBot != nil {
		opsBot.SetRankRunner(rankService)
		go func() {
			if err := opsBot.Start(); err != nil {
				lg.Error("telegram bot stopped", sl.Err(err))
			}
		}()
	}

	if conf.RankBatch.Enabled {
		var notifier scheduler.Notifier
		if opsBot != nil {
			notifier = opsBot
		}
		sched, err := scheduler.New(conf.RankBatch.CronSpec, rankService, notifier, lg)
		if err != nil {
			log.Fatal("scheduler: ", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	if err := api.New(conf, lg, handler); err != nil {
		lg.Error("api server stopped", sl.Err(err))
	}
	if opsBot != nil {
		opsBot.Stop()
	}
}
