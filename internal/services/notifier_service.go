package services

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"ofertalia/internal/models"
)

// Notifier delivers pipeline events to external collaborators. Delivery is
// best-effort: a failed notification never fails the committed operation.
type Notifier interface {
	LeadAssigned(lead *models.Lead, gestor *models.User)
	LeadReadyToContract(lead *models.Lead)
	LeadWon(lead *models.Lead)
	LeadRejected(lead *models.Lead, reason string)
}

type notifier struct {
	dialer     *gomail.Dialer
	from       string
	adminEmail string
	bot        *tgbotapi.BotAPI
}

// NewNotifier wires email (admin contracting desk) and telegram (gestors).
// Either channel may be absent; the notifier degrades to logging.
func NewNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, adminEmail, telegramToken string) Notifier {
	n := &notifier{from: fromEmail, adminEmail: adminEmail}
	if smtpHost != "" {
		n.dialer = gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	}
	if telegramToken != "" {
		bot, err := tgbotapi.NewBotAPI(telegramToken)
		if err != nil {
			zap.S().Warnw("[notify] telegram bot init failed", "err", err)
		} else {
			n.bot = bot
		}
	}
	return n
}

func (n *notifier) sendMail(subject, body string) {
	if n.dialer == nil || n.adminEmail == "" {
		zap.S().Debugw("[notify][mail][skip]", "subject", subject)
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.adminEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	if err := n.dialer.DialAndSend(m); err != nil {
		zap.S().Warnw("[notify][mail] send failed", "subject", subject, "err", err)
	}
}

func (n *notifier) sendTelegram(chatID int64, text string) {
	if n.bot == nil || chatID == 0 {
		zap.S().Debugw("[notify][tg][skip]", "chat_id", chatID)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		zap.S().Warnw("[notify][tg] send failed", "chat_id", chatID, "err", err)
	}
}

func (n *notifier) LeadAssigned(lead *models.Lead, gestor *models.User) {
	if gestor.TelegramChatID != nil {
		n.sendTelegram(*gestor.TelegramChatID,
			fmt.Sprintf("Nou lead assignat: %s (%s)", lead.CompanyName, lead.Status))
	}
}

func (n *notifier) LeadReadyToContract(lead *models.Lead) {
	n.sendMail(
		fmt.Sprintf("Lead verificat pendent de contracte: %s", lead.CompanyName),
		fmt.Sprintf(`
			<h3>Lead llest per contractar</h3>
			<p>L'equip CRM ha verificat <strong>%s</strong> (lead %s).</p>
			<p>Queda pendent el pas de contractació administrativa.</p>
		`, lead.CompanyName, lead.ID),
	)
}

func (n *notifier) LeadWon(lead *models.Lead) {
	n.sendMail(
		fmt.Sprintf("Lead guanyat: %s", lead.CompanyName),
		fmt.Sprintf(`
			<h3>Lead guanyat</h3>
			<p><strong>%s</strong> (lead %s) ha passat a WON; cal aprovisionar l'empresa.</p>
		`, lead.CompanyName, lead.ID),
	)
}

func (n *notifier) LeadRejected(lead *models.Lead, reason string) {
	if lead.AssignedToID == nil {
		return
	}
	// the owning gestor learns through the activity trail too; telegram is a nudge
	zap.S().Infow("[notify][reject]", "lead_id", lead.ID, "gestor_id", *lead.AssignedToID, "reason", reason)
}
