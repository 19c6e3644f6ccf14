package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const accountNotConfigured = "Cloud account is not configured on this server."

// credentials разбирает "email пароль"; пароль может содержать пробелы
func credentials(args string) (string, string, bool) {
	email, password, ok := strings.Cut(strings.TrimSpace(args), " ")
	password = strings.TrimSpace(password)
	return email, password, ok && password != ""
}

// forgetMessage удаляет из чата сообщение с паролем
func (b *Bot) forgetMessage(ctx context.Context, message *tgbotapi.Message) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)); err != nil {
		b.logger.WarnContext(ctx, "Could not delete credentials message", "error", err)
	}
}

func (b *Bot) handleSignIn(ctx context.Context, message *tgbotapi.Message, args string) error {
	chatID := message.Chat.ID
	if b.account == nil {
		return b.sendErrorMessage(chatID, accountNotConfigured)
	}
	email, password, ok := credentials(args)
	if !ok {
		return b.sendErrorMessage(chatID, "Usage: /signin <email> <password>")
	}
	b.forgetMessage(ctx, message)

	if err := b.account.SignIn(ctx, email, password); err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	b.logger.InfoContext(ctx, "User signed in", "user_id", message.From.ID)
	return b.sendMenu(chatID, "✅ Signed in as "+email+". Demo mode is off.\n\n"+formatMode(b.store.Mode(ctx), false))
}

func (b *Bot) handleSignUp(ctx context.Context, message *tgbotapi.Message, args string) error {
	chatID := message.Chat.ID
	if b.account == nil {
		return b.sendErrorMessage(chatID, accountNotConfigured)
	}
	email, password, ok := credentials(args)
	if !ok {
		return b.sendErrorMessage(chatID, "Usage: /signup <email> <password>")
	}
	b.forgetMessage(ctx, message)

	if err := b.account.SignUp(ctx, email, password); err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	return b.sendText(chatID, "✅ Account created for "+email+". Confirm the email if asked, then /signin.")
}

func (b *Bot) handleSignOut(ctx context.Context, chatID int64) error {
	if b.account != nil {
		if err := b.account.SignOut(ctx); err != nil {
			return b.sendErrorMessage(chatID, err.Error())
		}
	} else if err := b.demo.Clear(ctx); err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}
	return b.sendMenu(chatID, "Signed out.\n\n"+formatMode(b.store.Mode(ctx), false))
}

func (b *Bot) handleProfile(ctx context.Context, chatID int64, name string) error {
	if b.account == nil {
		return b.sendErrorMessage(chatID, accountNotConfigured)
	}

	profile, err := b.account.Profile(ctx)
	if name != "" {
		profile, err = b.account.SaveProfile(ctx, name)
	}
	if err != nil {
		return b.sendErrorMessage(chatID, err.Error())
	}

	display := profile.DisplayName
	if display == "" {
		display = "not set, use /profile <name>"
	}
	return b.sendText(chatID, "👤 Profile\nName: "+display+"\nUser: "+profile.UserID)
}
