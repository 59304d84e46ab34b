package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier entrega as notificações do rastreador via Telegram.
// A entrega é melhor esforço: falhas são registradas e descartadas.
type Notifier struct {
	bot *tgbotapi.BotAPI
}

// NewNotifier cria o destino de notificações sobre um bot já inicializado
func NewNotifier(bot *tgbotapi.BotAPI) *Notifier {
	return &Notifier{bot: bot}
}

// Notify envia uma mensagem ao usuário sem propagar falhas
func (n *Notifier) Notify(userID int64, message string) {
	msg := tgbotapi.NewMessage(userID, message)
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("Erro ao enviar notificação para o usuário %d: %v", userID, err)
	}
}
