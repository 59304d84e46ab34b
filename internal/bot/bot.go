package bot

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Init autentica o bot na API do Telegram com o token informado
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("token do Telegram vazio")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("o Telegram rejeitou o token configurado em TELEGRAM_BOT_TOKEN; gere um novo com o @BotFather")
		}
		return nil, fmt.Errorf("erro ao autenticar no Telegram: %w", err)
	}

	api.Debug = false
	log.Printf("Conectado ao Telegram como @%s", api.Self.UserName)
	return api, nil
}
