// Package bot is the operations alert channel: a Telegram bot that pushes
// ERROR-level log records and rank-batch summaries to the admin chat and
// answers a couple of on-demand status commands.
package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"teamvest/entity"
	"teamvest/internal/rank"
	"teamvest/lib/sl"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

// Database is the slice of the store the ops bot reads for /status.
type Database interface {
	CountWithdrawals(status entity.WithdrawalStatus) (int64, error)
	CountPendingClaims() (int64, error)
	AllUserEmails() ([]string, error)
}

// RankRunner triggers a full rank batch from the /rank command.
type RankRunner interface {
	ProcessAllUsers() (*rank.BatchResult, error)
}

// TgBot pushes operational messages to a fixed set of admin chat ids taken
// from config; it does not manage its own subscriber list.
type TgBot struct {
	log      *slog.Logger
	api      *tgbotapi.Bot
	db       Database
	runner   RankRunner
	adminIds []int64
	updater  *ext.Updater
}

func NewTgBot(apiKey string, adminIds []int64, db Database, log *slog.Logger) (*TgBot, error) {
	bot := &TgBot{
		log:      log.With(sl.Module("tgbot")),
		db:       db,
		adminIds: adminIds,
	}
	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	bot.api = api
	return bot, nil
}

// SetRankRunner wires the batch trigger behind the /rank command. The bot is
// created before the rank service so the service can log through the
// Telegram handler; until the runner is set the command reports unavailable.
func (t *TgBot) SetRankRunner(runner RankRunner) {
	t.runner = runner
}

func (t *TgBot) Start() error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(b *tgbotapi.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			t.log.Error("handling update:", sl.Err(err))
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	t.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewCommand("status", t.status))
	dispatcher.AddHandler(handlers.NewCommand("rank", t.rankCmd))
	dispatcher.AddHandler(handlers.NewCommand("help", t.help))

	err := t.updater.StartPolling(t.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	t.updater.Idle()
	return nil
}

func (t *TgBot) Stop() {
	if t.updater != nil {
		t.log.Info("stopping telegram bot")
		t.updater.Stop()
	}
}

func (t *TgBot) isAdmin(chatId int64) bool {
	for _, id := range t.adminIds {
		if id == chatId {
			return true
		}
	}
	return false
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	if text == "" {
		t.log.With("id", chatId).Debug("empty message")
		return
	}
	_, err := t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		t.log.With(slog.Int64("id", chatId)).Warn("sending message", sl.Err(err))
		_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
		if err != nil {
			t.log.With(slog.Int64("id", chatId)).Error("sending safe message", sl.Err(err))
		}
	}
}

// Sanitize escapes Telegram MarkdownV2 reserved characters.
func Sanitize(input string) string {
	reservedChars := "\\_{}#+-.!|()[]=*"
	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\" + string(char)
		} else {
			sanitized += string(char)
		}
	}
	return sanitized
}
