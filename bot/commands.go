package bot

import (
	"fmt"
	"teamvest/entity"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

func (t *TgBot) status(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		return nil
	}
	if t.db == nil {
		t.plainResponse(chatId, "database not connected")
		return nil
	}

	pending, err := t.db.CountWithdrawals(entity.WithdrawalPending)
	if err != nil {
		t.plainResponse(chatId, Sanitize(fmt.Sprintf("status failed: %v", err)))
		return nil
	}
	claims, err := t.db.CountPendingClaims()
	if err != nil {
		t.plainResponse(chatId, Sanitize(fmt.Sprintf("status failed: %v", err)))
		return nil
	}
	emails, err := t.db.AllUserEmails()
	if err != nil {
		t.plainResponse(chatId, Sanitize(fmt.Sprintf("status failed: %v", err)))
		return nil
	}

	msg := fmt.Sprintf("users: %d\npending withdrawals: %d\npending claims: %d",
		len(emails), pending, claims)
	t.plainResponse(chatId, Sanitize(msg))
	return nil
}

// rankCmd triggers a full rank batch. Runs inline; batches are bounded and
// the poller keeps serving other updates on its own routines.
func (t *TgBot) rankCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		return nil
	}
	if t.runner == nil {
		t.plainResponse(chatId, "rank service not connected")
		return nil
	}

	t.plainResponse(chatId, "rank batch started")
	result, err := t.runner.ProcessAllUsers()
	if err != nil {
		t.plainResponse(chatId, Sanitize(fmt.Sprintf("rank batch failed: %v", err)))
		return nil
	}
	msg := fmt.Sprintf("rank batch done\nprocessed: %d\nfailed: %d\nelapsed: %.1fs",
		result.Processed, result.Failed, result.Elapsed.Seconds())
	t.plainResponse(chatId, Sanitize(msg))
	return nil
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	if !t.isAdmin(chatId) {
		return nil
	}
	t.plainResponse(chatId, Sanitize(
		"/status - pending withdrawals and user count\n"+
			"/rank - run the rank batch now\n"+
			"/help - this message"))
	return nil
}

// SendMessage pushes a plain operational message to every admin chat.
func (t *TgBot) SendMessage(msg string) {
	for _, id := range t.adminIds {
		t.plainResponse(id, msg)
	}
}
