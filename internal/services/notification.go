package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// alertCooldown suppresses repeat alerts for the same (pair, venue) so a
// sustained toxic episode produces one message, not one per event.
const alertCooldown = 5 * time.Minute

// NotificationService pushes high-priority conditions (toxic flow, inventory
// breaches, arbitrage) to a Telegram chat. Without a token it degrades to a
// logging-only sink.
type NotificationService struct {
	bot    *bot.Bot
	chatID int64
	logger *logrus.Logger

	mu        sync.Mutex
	lastAlert map[string]time.Time
}

// NewNotificationService creates the notifier. An empty token disables
// Telegram delivery but keeps the sink wired.
func NewNotificationService(token string, chatID int64, logger *logrus.Logger) *NotificationService {
	var b *bot.Bot
	if token != "" {
		var err error
		b, err = bot.New(token)
		if err != nil {
			logger.WithError(err).Warn("Telegram bot init failed, alerts degraded to logs")
			b = nil
		}
	}
	return &NotificationService{
		bot:       b,
		chatID:    chatID,
		logger:    logger,
		lastAlert: make(map[string]time.Time),
	}
}

// PublishSignal implements SignalSink: only pause and rebalance signals are
// escalated, everything else passes silently.
func (ns *NotificationService) PublishSignal(ctx context.Context, signal models.UnifiedMMSignal) error {
	if signal.Action != models.ActionPause && signal.Action != models.ActionRebalance {
		return nil
	}

	key := signal.Pair + "@" + signal.Venue + ":" + string(signal.Action)
	if !ns.shouldAlert(key, signal.Timestamp) {
		return nil
	}

	msg := fmt.Sprintf("*MM alert* `%s@%s`\nAction: %s\nToxicity: %s, Inventory: %s\n%s",
		signal.Pair, signal.Venue, signal.Action,
		signal.ToxicityRisk, signal.InventoryRisk,
		strings.Join(signal.Reasoning, "\n"))
	return ns.send(ctx, msg)
}

// NotifyArbitrage pushes one message summarizing the detected opportunities.
func (ns *NotificationService) NotifyArbitrage(ctx context.Context, opps []models.ArbitrageOpportunity) error {
	if len(opps) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("*Arbitrage opportunities*\n")
	for _, opp := range opps {
		sb.WriteString(fmt.Sprintf("`%s` buy %s @ %s, sell %s @ %s, net %s%%\n",
			opp.Pair, opp.BuyDex, opp.BuyPrice.StringFixed(4),
			opp.SellDex, opp.SellPrice.StringFixed(4),
			opp.NetProfitPct.StringFixed(3)))
	}
	return ns.send(ctx, sb.String())
}

func (ns *NotificationService) shouldAlert(key string, at time.Time) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if last, ok := ns.lastAlert[key]; ok && at.Sub(last) < alertCooldown {
		return false
	}
	ns.lastAlert[key] = at
	return true
}

func (ns *NotificationService) send(ctx context.Context, text string) error {
	if ns.bot == nil {
		ns.logger.WithField("alert", text).Info("Telegram disabled, logging alert")
		return nil
	}

	_, err := ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    ns.chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}
