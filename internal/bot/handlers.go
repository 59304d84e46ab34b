package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"rastreio-produtos/internal/database"
	"rastreio-produtos/internal/models"
	"rastreio-produtos/internal/tracker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Limite de requisições por usuário por minuto
const (
	rateLimit  = 100
	rateWindow = time.Minute
)

// Tempo máximo de uma operação disparada por comando
const commandTimeout = 2 * time.Minute

var startedAt = time.Now()

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// SetupCommands processa os comandos recebidos do Telegram até o canal de
// atualizações ser fechado. Um authorizedChatID diferente de zero restringe
// os comandos privados àquele chat.
func SetupCommands(bot *tgbotapi.BotAPI, db *database.DB, tr *tracker.Tracker, authorizedChatID int64) {
	hasAuth := authorizedChatID != 0

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		text := update.Message.Text
		if text == "" {
			continue
		}

		parts := strings.Fields(text)
		if len(parts) == 0 {
			continue
		}

		command := strings.ToLower(parts[0])
		// Remover @botname se presente
		if idx := strings.Index(command, "@"); idx > 0 {
			command = command[:idx]
		}

		chatID := update.Message.Chat.ID

		// Comandos públicos (não precisam de autorização)
		isPublicCommand := command == "/start" || command == "/help"

		if !isPublicCommand && hasAuth && chatID != authorizedChatID {
			reply(bot, chatID, "Você não está autorizado a usar este bot.")
			continue
		}

		// Controle de taxa por usuário
		if count, err := db.GetUserRequestCount(chatID, rateWindow); err == nil && count >= rateLimit {
			reply(bot, chatID, "⚠️ Muitas requisições. Aguarde 1 minuto.")
			continue
		}
		if err := db.UpdateUserStats(chatID); err != nil {
			log.Printf("Erro ao registrar requisição do usuário %d: %v", chatID, err)
		}

		switch command {
		case "/start", "/help":
			handleHelp(bot, chatID)
		case "/add":
			handleAddTracking(bot, update.Message, tr)
		case "/list":
			handleListProducts(bot, chatID, db)
		case "/remove":
			handleRemoveProduct(bot, update.Message, tr)
		case "/check":
			handleCheckProduct(bot, update.Message, tr)
		case "/tamanhos":
			handleSizes(bot, update.Message, tr)
		case "/limite":
			handleThreshold(bot, update.Message, tr)
		case "/grafico":
			handleChart(bot, update.Message, tr)
		case "/comparar":
			handleCompare(bot, update.Message, tr)
		case "/status":
			handleStatus(bot, chatID, db, tr)
		default:
			reply(bot, chatID, "Comando não reconhecido. Use /help para ver os comandos disponíveis.")
		}
	}
}

func reply(bot *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Erro ao enviar mensagem: %v", err)
	}
}

func replyHTML(bot *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Erro ao enviar mensagem com HTML: %v", err)
		// Tentar sem formatação se houver erro
		msg.ParseMode = ""
		bot.Send(msg)
	}
}

func handleHelp(bot *tgbotapi.BotAPI, chatID int64) {
	helpText := `🤖 <b>Bot de Rastreamento de Preços</b>

<b>Comandos disponíveis:</b>

<b>/add &lt;URL&gt; [tamanho]</b> - Rastrear um produto
Exemplo: /add https://www.trendyol.com/marca/produto-p-1234567 M
Sem tamanho (ou "todos") acompanha todos os tamanhos.

<b>/list</b> - Listar seus produtos rastreados

<b>/remove &lt;id&gt;</b> - Parar de rastrear um produto

<b>/check &lt;id&gt;</b> - Verificar o preço de um produto agora

<b>/tamanhos &lt;URL&gt;</b> - Ver tamanhos disponíveis de um produto

<b>/limite &lt;id&gt; &lt;preço&gt;</b> - Avisar quando o preço ficar igual ou abaixo do limite

<b>/grafico &lt;id&gt;</b> - Gráfico do histórico de preços

<b>/comparar &lt;nome&gt;</b> - Comparar preços entre lojas

<b>/status</b> - Estado do bot

<b>/help</b> - Mostrar esta mensagem de ajuda`

	replyHTML(bot, chatID, helpText)
}

func handleAddTracking(bot *tgbotapi.BotAPI, message *tgbotapi.Message, tr *tracker.Tracker) {
	parts := strings.Fields(message.Text)
	if len(parts) < 2 {
		reply(bot, message.Chat.ID, "❌ Formato incorreto.\n\nUso: /add <URL> [tamanho]\n\nExemplo: /add https://www.trendyol.com/marca/produto-p-1234567 M")
		return
	}

	url := parts[1]
	size := models.SizeAll
	if len(parts) >= 3 {
		size = parts[2]
	}

	waitMsg := tgbotapi.NewMessage(message.Chat.ID, "⏳ Buscando detalhes do produto...")
	bot.Send(waitMsg)

	ctx, cancelCtx := context.WithTimeout(context.Background(), commandTimeout)
	defer cancelCtx()

	result, err := tr.AddTracking(ctx, message.Chat.ID, url, size)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidURL) {
			reply(bot, message.Chat.ID, "❌ URL inválida. Envie o link de uma página de produto de uma loja suportada.\nExemplo: https://www.trendyol.com/marca/produto-p-1234567")
			return
		}
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Erro ao rastrear produto: %v", err))
		return
	}

	response := fmt.Sprintf(
		"✅ Produto rastreado com sucesso!\n\n"+
			"📦 Nome: %s\n"+
			"💰 Preço atual: %.2f TL\n"+
			"📏 Tamanho acompanhado: %s\n",
		result.Name, result.Price, size,
	)
	if len(result.AvailableSizes) > 0 {
		response += fmt.Sprintf("📏 Tamanhos disponíveis: %s\n", strings.Join(result.AvailableSizes, ", "))
	}
	reply(bot, message.Chat.ID, response)
}

func handleListProducts(bot *tgbotapi.BotAPI, chatID int64, db *database.DB) {
	products, err := db.GetUserProducts(chatID)
	if err != nil {
		reply(bot, chatID, fmt.Sprintf("❌ Erro ao listar produtos: %v", err))
		return
	}

	if len(products) == 0 {
		reply(bot, chatID, "📋 Nenhum produto sendo rastreado no momento.")
		return
	}

	var response strings.Builder
	response.WriteString("📋 <b>Produtos rastreados:</b>\n\n")

	for _, p := range products {
		response.WriteString(fmt.Sprintf("🆔 <b>ID: %d</b>\n", p.ID))
		response.WriteString(fmt.Sprintf("📦 %s\n", escapeHTML(p.Name)))
		if p.LastPrice > 0 {
			response.WriteString(fmt.Sprintf("💰 <b>Último preço: %.2f TL</b>\n", p.LastPrice))
		} else {
			response.WriteString("💰 <b>Último preço: ainda não verificado</b>\n")
		}
		response.WriteString(fmt.Sprintf("📏 Tamanho: %s\n", p.Size))
		if !p.WasAvailable {
			response.WriteString("🚫 Indisponível na última verificação\n")
		}
		if !p.LastCheck.IsZero() {
			response.WriteString(fmt.Sprintf("🕐 Última verificação: %s\n", p.LastCheck.Format("02/01/2006 15:04")))
		}
		response.WriteString(fmt.Sprintf("🔗 %s\n\n", p.URL))
	}

	replyHTML(bot, chatID, response.String())
}

func handleRemoveProduct(bot *tgbotapi.BotAPI, message *tgbotapi.Message, tr *tracker.Tracker) {
	parts := strings.Fields(message.Text)
	if len(parts) < 2 {
		reply(bot, message.Chat.ID, "❌ Formato incorreto.\n\nUso: /remove <id>\n\nExemplo: /remove 1")
		return
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		reply(bot, message.Chat.ID, "❌ ID inválido.")
		return
	}

	removed, err := tr.DeleteTracking(message.Chat.ID, id)
	if err != nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Erro ao remover produto: %v", err))
		return
	}
	if !removed {
		reply(bot, message.Chat.ID, "❌ Produto não encontrado.")
		return
	}
	reply(bot, message.Chat.ID, "✅ Produto removido do rastreamento.")
}

func handleCheckProduct(bot *tgbotapi.BotAPI, message *tgbotapi.Message, tr *tracker.Tracker) {
	parts := strings.Fields(message.Text)
	if len(parts) < 2 {
		reply(bot, message.Chat.ID, "❌ Formato incorreto.\n\nUso: /check <id>\n\nExemplo: /check 1")
		return
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		reply(bot, message.Chat.ID, "❌ ID inválido.")
		return
	}

	waitMsg := tgbotapi.NewMessage(message.Chat.ID, "⏳ Verificando preço...")
	sentMsg, err := bot.Send(waitMsg)
	var sentMessageID int
	if err == nil {
		sentMessageID = sentMsg.MessageID
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), commandTimeout)
	defer cancelCtx()

	result, err := tr.CheckNow(ctx, message.Chat.ID, id)

	var response string
	if err != nil {
		response = fmt.Sprintf("❌ Erro ao verificar preço: %v", err)
	} else {
		response = fmt.Sprintf(
			"📊 Produto: %s\n\n"+
				"💰 Preço atual: %.2f TL\n"+
				"📏 Tamanhos disponíveis: %s",
			result.Name, result.Price, strings.Join(result.AvailableSizes, ", "),
		)
		if !result.InStock {
			response += "\n🚫 Produto sem estoque no momento"
		}
	}

	if sentMessageID != 0 {
		editMsg := tgbotapi.NewEditMessageText(message.Chat.ID, sentMessageID, response)
		if _, err := bot.Send(editMsg); err != nil {
			reply(bot, message.Chat.ID, response)
		}
	} else {
		reply(bot, message.Chat.ID, response)
	}
}

func handleSizes(bot *tgbotapi.BotAPI, message *tgbotapi.Message, tr *tracker.Tracker) {
	parts := strings.Fields(message.Text)
	if len(parts) < 2 {
		reply(bot, message.Chat.ID, "❌ Formato incorreto.\n\nUso: /tamanhos <URL>")
		return
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), commandTimeout)
	defer cancelCtx()

	sizes, err := tr.GetAvailableSizes(ctx, parts[1])
	if err != nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Erro ao buscar tamanhos: %v", err))
		return
	}
	if len(sizes) == 0 {
		reply(bot, message.Chat.ID, "📏 Nenhum tamanho disponível para este produto.")
		return
	}
	reply(bot, message.Chat.ID, fmt.Sprintf("📏 Tamanhos disponíveis: %s", strings.Join(sizes, ", ")))
}

func handleThreshold(bot *tgbotapi.BotAPI, message *tgbotapi.Message, tr *tracker.Tracker) {
	parts := strings.Fields(message.Text)
	if len(parts) < 3 {
		reply(bot, message.Chat.ID, "❌ Formato incorreto.\n\nUso: /limite <id> <preço>\n\nExemplo: /limite 1 250")
		return
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		reply(bot, message.Chat.ID, "❌ ID inválido.")
		return
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(parts[2], ",", "."), 64)
	if err != nil || price <= 0 {
		reply(bot, message.Chat.ID, "❌ Preço inválido. Use um valor numérico positivo.")
		return
	}

	if err := tr.AddPriceThreshold(message.Chat.ID, id, price); err != nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Erro ao configurar limite: %v", err))
		return
	}
	reply(bot, message.Chat.ID, fmt.Sprintf("🎯 Limite configurado! Você será avisado quando o preço ficar igual ou abaixo de %.2f TL.", price))
}

func handleChart(bot *tgbotapi.BotAPI, message *tgbotapi.Message, tr *tracker.Tracker) {
	parts := strings.Fields(message.Text)
	if len(parts) < 2 {
		reply(bot, message.Chat.ID, "❌ Formato incorreto.\n\nUso: /grafico <id>")
		return
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		reply(bot, message.Chat.ID, "❌ ID inválido.")
		return
	}

	data, err := tr.GetPriceHistoryChart(id)
	if err != nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Não foi possível gerar o gráfico: %v", err))
		return
	}

	photo := tgbotapi.NewPhoto(message.Chat.ID, tgbotapi.FileBytes{
		Name:  "historico.png",
		Bytes: data,
	})
	photo.Caption = "📈 Histórico de preços"
	if _, err := bot.Send(photo); err != nil {
		log.Printf("Erro ao enviar gráfico: %v", err)
		reply(bot, message.Chat.ID, "❌ Erro ao enviar o gráfico.")
	}
}

func handleStatus(bot *tgbotapi.BotAPI, chatID int64, db *database.DB, tr *tracker.Tracker) {
	all, err := db.GetAllTrackedProducts()
	if err != nil {
		reply(bot, chatID, fmt.Sprintf("❌ Erro ao consultar o estado: %v", err))
		return
	}
	mine, err := db.GetUserProducts(chatID)
	if err != nil {
		reply(bot, chatID, fmt.Sprintf("❌ Erro ao consultar o estado: %v", err))
		return
	}

	uptime := time.Since(startedAt).Round(time.Second)
	response := fmt.Sprintf(
		"🤖 <b>Estado do bot</b>\n\n"+
			"⏱ No ar há: %s\n"+
			"🔄 Intervalo de verificação: %s\n"+
			"📦 Produtos rastreados: %d (seus: %d)",
		uptime, tr.Interval(), len(all), len(mine),
	)
	replyHTML(bot, chatID, response)
}

func handleCompare(bot *tgbotapi.BotAPI, message *tgbotapi.Message, tr *tracker.Tracker) {
	parts := strings.Fields(message.Text)
	if len(parts) < 2 {
		reply(bot, message.Chat.ID, "❌ Formato incorreto.\n\nUso: /comparar <nome do produto>")
		return
	}

	name := strings.Join(parts[1:], " ")
	results, err := tr.ComparePrices(name)
	if err != nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Erro ao comparar preços: %v", err))
		return
	}
	if len(results) == 0 {
		reply(bot, message.Chat.ID, "🔍 Nenhuma leitura de preço registrada para este produto.")
		return
	}

	var response strings.Builder
	response.WriteString(fmt.Sprintf("🔍 <b>Comparação de preços: %s</b>\n\n", escapeHTML(name)))
	for _, r := range results {
		stock := "✅ em estoque"
		if !r.InStock {
			stock = "🚫 sem estoque"
		}
		response.WriteString(fmt.Sprintf("🏬 %s: <b>%.2f TL</b> (%s)\n🔗 %s\n\n", r.StoreName, r.Price, stock, r.URL))
	}
	replyHTML(bot, message.Chat.ID, response.String())
}
