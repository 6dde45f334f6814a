package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-travel-planner/internal/app"
	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/itinerary"
	"ai-travel-planner/internal/metrics"
	"ai-travel-planner/internal/shared"
)

const (
	maxMessageLength = 4096
	revisionTTL      = time.Hour
	requestTimeout   = 3 * time.Minute
	// promptAlertTokens triggers an admin alert for oversized prompts.
	promptAlertTokens = 4000
)

// Sender is the part of the Telegram API the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Planner is the application surface the bot drives.
type Planner interface {
	PlanTrip(ctx context.Context, userID string, req itinerary.TripRequest) (*app.PlanResult, error)
	Latest(ctx context.Context, userID string) (*itinerary.Record, error)
	Revise(ctx context.Context, id, modification string) (*itinerary.Itinerary, error)
	Calendar(ctx context.Context, id string) (string, error)
	Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot wraps the Telegram API and the travel planner.
type Bot struct {
	api        Sender
	planner    Planner
	sessions   *SessionRepository
	collectors *metrics.Collectors
	cfg        *config.Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewBotAPI authorizes against Telegram and points the webhook at cfg.TelegramWebhookURL.
func NewBotAPI(cfg *config.Config, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("Authorized on account", "username", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("Webhook set", "description", resp.Description)
	return api, nil
}

// NewBot creates a Bot. collectors may be nil.
func NewBot(cfg *config.Config, api Sender, planner Planner, sessions *SessionRepository, collectors *metrics.Collectors, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:        api,
		planner:    planner,
		sessions:   sessions,
		collectors: collectors,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// WebhookHandler acknowledges Telegram updates immediately and processes
// them in the background.
func (b *Bot) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			b.logger.Warn("Error parsing update", "error", err)
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			b.HandleUpdate(ctx, update)
		}()
	}
}

// HandleUpdate processes one update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.isAllowed(msg.From.ID) {
		b.logger.Warn("Unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	command := msg.Command()
	if b.collectors != nil {
		label := command
		if label == "" {
			label = "message"
		}
		b.collectors.BotUpdates.WithLabelValues(label).Inc()
	}

	switch command {
	case "":
		b.handleText(ctx, msg)
	case "start", "help":
		b.reply(msg.Chat.ID, requestUsage+"\n\n/revise <change> adjusts your latest itinerary\n/ics sends it as a calendar\n/cancel drops a pending revision")
	case "revise":
		b.handleReviseCommand(ctx, msg)
	case "ics":
		b.handleCalendar(ctx, msg)
	case "cancel":
		var current string
		if s := b.session(ctx, msg.From.ID); s != nil {
			current = s.ItineraryID
		}
		b.setState(ctx, msg.From.ID, StateIdle, current)
		b.reply(msg.Chat.ID, "Okay, nothing pending.")
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	session := b.session(ctx, msg.From.ID)
	if session != nil && session.State == StateAwaitingRevision {
		if session.Expired(b.now(), revisionTTL) {
			b.setState(ctx, msg.From.ID, StateIdle, session.ItineraryID)
		} else {
			b.revise(ctx, msg, session.ItineraryID, msg.Text)
			return
		}
	}

	req, err := ParseTripRequest(msg.Text)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("I couldn't read that trip: %v\n\n%s", err, requestUsage))
		return
	}
	b.handlePlannerRequest(ctx, msg, req)
}

func (b *Bot) handlePlannerRequest(ctx context.Context, msg *tgbotapi.Message, req itinerary.TripRequest) {
	status := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("🧭 *Planning %d days in %s...*", req.Duration, escapeMarkdown(req.Destination)))
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(status)
	if err != nil {
		b.logger.Warn("Failed to send initial reply", "error", err)
	}

	b.logger.Info("Generating itinerary", "user_id", msg.From.ID, "destination", req.Destination)
	res, err := b.planner.PlanTrip(ctx, userKey(msg.From.ID), req)
	if err != nil {
		b.logger.Error("Error planning trip", "error", err)
		b.edit(msg.Chat.ID, sent.MessageID, "❌ Could not plan the trip: "+err.Error())
		return
	}

	note := "✅ Here is your itinerary."
	if res.Fallback {
		note = "⚠️ Detailed generation was unavailable, so this is a basic itinerary."
	}
	b.edit(msg.Chat.ID, sent.MessageID, note)
	b.sendLong(msg.Chat.ID, itinerary.RenderText(res.Itinerary))
	b.setState(ctx, msg.From.ID, StateIdle, res.ID)
	b.alertOnBloat(res.Metas)

	if res.Fallback && res.Reason != nil {
		b.sendAdminAlert(fmt.Sprintf("Fallback itinerary for %s: %v", req.Destination, res.Reason))
	}
}

func (b *Bot) handleReviseCommand(ctx context.Context, msg *tgbotapi.Message) {
	id := b.currentItinerary(ctx, msg.From.ID)
	if id == "" {
		b.reply(msg.Chat.ID, "You have no itinerary yet. Send a trip request first.")
		return
	}

	modification := strings.TrimSpace(msg.CommandArguments())
	if modification == "" {
		b.setState(ctx, msg.From.ID, StateAwaitingRevision, id)
		b.reply(msg.Chat.ID, "What would you like to change?")
		return
	}
	b.revise(ctx, msg, id, modification)
}

func (b *Bot) revise(ctx context.Context, msg *tgbotapi.Message, id, modification string) {
	b.setState(ctx, msg.From.ID, StateIdle, id)

	revised, err := b.planner.Revise(ctx, id, modification)
	if err != nil {
		b.logger.Error("Error revising itinerary", "id", id, "error", err)
		b.reply(msg.Chat.ID, "❌ Could not revise the itinerary: "+err.Error())
		return
	}
	b.sendLong(msg.Chat.ID, itinerary.RenderText(revised))
}

func (b *Bot) handleCalendar(ctx context.Context, msg *tgbotapi.Message) {
	id := b.currentItinerary(ctx, msg.From.ID)
	if id == "" {
		b.reply(msg.Chat.ID, "You have no itinerary yet. Send a trip request first.")
		return
	}
	cal, err := b.planner.Calendar(ctx, id)
	if err != nil {
		b.logger.Error("Error rendering calendar", "id", id, "error", err)
		b.reply(msg.Chat.ID, "❌ Could not build the calendar.")
		return
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: "itinerary.ics", Bytes: []byte(cal)})
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Warn("Failed to send calendar", "error", err)
	}
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ Access Denied: Admin only.")
		return
	}

	usage, err := b.planner.Usage(ctx, 7)
	if err != nil {
		b.logger.Error("Error fetching metrics", "error", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.reply(msg.Chat.ID, formatUsageReport(usage, metrics.GetSysHealth(b.cfg.ExportPath)))
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 Usage & Health Report\n\n")

	sb.WriteString("🗓 Recent generation activity\n")
	if len(usage) == 0 {
		sb.WriteString("No data yet\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• %s: %d tokens (%d calls, %d failed)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
	}

	sb.WriteString("\n🧠 System Health\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Exports: %s in %d files\n", health.DataSize, health.DataFiles)
	return sb.String()
}

// currentItinerary returns the itinerary the user last worked on.
func (b *Bot) currentItinerary(ctx context.Context, userID int64) string {
	if s := b.session(ctx, userID); s != nil && s.ItineraryID != "" {
		return s.ItineraryID
	}
	rec, err := b.planner.Latest(ctx, userKey(userID))
	if err != nil {
		if !errors.Is(err, itinerary.ErrNotFound) {
			b.logger.Warn("Failed to load latest itinerary", "user_id", userID, "error", err)
		}
		return ""
	}
	return rec.ID
}

func (b *Bot) session(ctx context.Context, userID int64) *Session {
	s, err := b.sessions.Get(ctx, userID)
	if err != nil {
		b.logger.Warn("Failed to load session", "user_id", userID, "error", err)
		return nil
	}
	return s
}

func (b *Bot) setState(ctx context.Context, userID int64, state, itineraryID string) {
	if err := b.sessions.Save(ctx, Session{UserID: userID, State: state, ItineraryID: itineraryID}); err != nil {
		b.logger.Warn("Failed to save session", "user_id", userID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.reply(chatID, text)
		return
	}
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Warn("Failed to edit message", "chat_id", chatID, "error", err)
	}
}

// sendLong sends text as plain messages, split to fit Telegram's limit.
func (b *Bot) sendLong(chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		b.reply(chatID, chunk)
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.reply(b.cfg.AdminTelegramID, "⚠️ "+text)
}

// alertOnBloat notifies the admin about oversized prompts.
func (b *Bot) alertOnBloat(metas []shared.AgentMeta) {
	for _, m := range metas {
		if m.Usage.PromptTokens > promptAlertTokens {
			b.sendAdminAlert(fmt.Sprintf("Context Bloat Alert\nAgent: %s\nModel: %s\nPrompt Tokens: %d", m.AgentName, m.Usage.Model, m.Usage.PromptTokens))
		}
	}
}

// splitMessage cuts text into chunks of at most limit bytes, preferring
// line boundaries and never splitting a rune.
func splitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	var cur strings.Builder

	flush := func() {
		if chunk := strings.TrimRight(cur.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if cur.Len()+len(line) <= limit {
			cur.WriteString(line)
			continue
		}
		flush()
		for len(line) > limit {
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
