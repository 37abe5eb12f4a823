package telegram

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ai-fitness-coach/internal/apperr"
	"ai-fitness-coach/internal/chat"
	"ai-fitness-coach/internal/clipper"
	"ai-fitness-coach/internal/coach"
	"ai-fitness-coach/internal/config"
	"ai-fitness-coach/internal/meals"
	"ai-fitness-coach/internal/metrics"
	"ai-fitness-coach/internal/nutrition"
	"ai-fitness-coach/internal/profile"
	"ai-fitness-coach/internal/workout"
)

const (
	// chatSessionTTL is how long a chat keeps appending to the same
	// conversation after the last message.
	chatSessionTTL = 30 * time.Minute
	// historyLimit bounds how many stored messages are sent back to the coach.
	historyLimit = 20
	// messageLimit stays below Telegram's 4096 character cap.
	messageLimit = 4000

	// shutdownGrace is how long Close lets in-flight messages finish.
	shutdownGrace = 30 * time.Second

	defaultWorkoutDifficulty = "intermediate"
	defaultWorkoutMinutes    = 45
)

const helpText = `💪 *AI Fitness Coach*

/workout [goal] - generate and save a workout
/meals [calories] - generate and save a daily meal plan
/nutrition - generate your weekly nutrition plan
/new - start a new conversation

Send a recipe link to import it, or just ask me anything about training and nutrition.`

// botAPI is the part of the Telegram client the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// Deps are the services the bot works on.
type Deps struct {
	Coach     *coach.Coach
	Clipper   *clipper.Clipper
	Profiles  *profile.Repository
	Workouts  *workout.Repository
	MealPlans *meals.Repository
	Nutrition *nutrition.Repository
	Chats     *chat.Repository
	Sessions  *SessionRepository
	Metrics   *metrics.Store
}

// Bot wraps the Telegram API and the coach services.
type Bot struct {
	api       botAPI
	deps      Deps
	cfg       *config.Config
	logger    *zap.Logger
	startedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	grace  time.Duration
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, deps Deps, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		logger.Info("webhook set", zap.String("description", resp.Description))
	}

	return newBot(api, cfg, deps, logger), nil
}

func newBot(api botAPI, cfg *config.Config, deps Deps, logger *zap.Logger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:       api,
		deps:      deps,
		cfg:       cfg,
		logger:    logger.Named("telegram"),
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		grace:     shutdownGrace,
	}
}

// Close waits for in-flight messages to be answered. Work still running
// after the grace period is cancelled.
func (b *Bot) Close() {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(b.grace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		b.logger.Warn("shutdown grace period elapsed, cancelling in-flight messages",
			zap.Duration("grace", b.grace))
	}
	b.cancel()
	<-done
}

// UserID maps a Telegram account to the user id its data is stored under.
func UserID(telegramID int64) string {
	return "telegram:" + strconv.FormatInt(telegramID, 10)
}

// ServeHTTP handles webhook updates. Telegram gets 200 as soon as the update
// is parsed; the message is processed in the background.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !slices.Contains(b.cfg.TelegramAllowedUserIDs, msg.From.ID) {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("telegram_id", msg.From.ID),
			zap.String("username", msg.From.UserName),
		)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.processMessage(b.ctx, msg)
	}()
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	userID := UserID(msg.From.ID)

	if msg.IsCommand() {
		args := strings.TrimSpace(msg.CommandArguments())
		switch msg.Command() {
		case "start", "help":
			b.sendMarkdown(msg.Chat.ID, helpText)
		case "workout":
			b.handleWorkout(ctx, msg.Chat.ID, userID, args)
		case "meals":
			b.handleMealPlan(ctx, msg.Chat.ID, userID, args)
		case "nutrition":
			b.handleNutrition(ctx, msg.Chat.ID, userID)
		case "new":
			b.handleNewConversation(ctx, msg.Chat.ID, userID)
		case "metrics":
			b.handleMetricsRequest(ctx, msg)
		default:
			b.sendMarkdown(msg.Chat.ID, helpText)
		}
		return
	}

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClipperRequest(ctx, msg.Chat.ID, text)
		return
	}
	if text == "" {
		return
	}
	b.handleChat(ctx, msg.Chat.ID, userID, text)
}

func (b *Bot) handleWorkout(ctx context.Context, chatID int64, userID, goal string) {
	status, ok := b.sendStatus(chatID, "🏋️ *Building your workout...*")
	if !ok {
		return
	}

	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		b.fail(chatID, status, "loading your profile", err)
		return
	}
	plan, err := b.deps.Coach.GenerateWorkout(ctx, p, coach.WorkoutRequest{Goal: goal})
	if err != nil {
		b.fail(chatID, status, "generating your workout", err)
		return
	}
	if _, err := b.deps.Workouts.Create(ctx, userID, *plan, defaultWorkoutDifficulty, defaultWorkoutMinutes, true); err != nil {
		b.logger.Warn("failed to save workout", zap.String("user_id", userID), zap.Error(err))
	}
	b.deliver(chatID, status, formatWorkoutMarkdown(plan))
}

func (b *Bot) handleMealPlan(ctx context.Context, chatID int64, userID, args string) {
	var calories float64
	if args != "" {
		c, err := strconv.ParseFloat(args, 64)
		if err != nil || c <= 0 {
			b.sendMarkdown(chatID, "Usage: `/meals 2200` (daily calories, optional)")
			return
		}
		calories = c
	}

	status, ok := b.sendStatus(chatID, "🥗 *Planning your meals...*")
	if !ok {
		return
	}

	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		b.fail(chatID, status, "loading your profile", err)
		return
	}
	plan, err := b.deps.Coach.GenerateMealPlan(ctx, p, coach.MealPlanRequest{TargetCalories: calories})
	if err != nil {
		b.fail(chatID, status, "generating your meal plan", err)
		return
	}
	if _, err := b.deps.MealPlans.Create(ctx, userID, *plan); err != nil {
		b.logger.Warn("failed to save meal plan", zap.String("user_id", userID), zap.Error(err))
	}
	b.deliver(chatID, status, formatMealPlanMarkdown(plan))
}

func (b *Bot) handleNutrition(ctx context.Context, chatID int64, userID string) {
	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		b.logger.Error("failed to load profile", zap.String("user_id", userID), zap.Error(err))
		b.sendMarkdown(chatID, "❌ Something went wrong. Please try again later.")
		return
	}
	if p == nil {
		b.sendMarkdown(chatID, "📝 Complete the onboarding quiz in the app first so I know what to plan for.")
		return
	}

	status, ok := b.sendStatus(chatID, "🧑‍🍳 *Thinking...* \n(Building your weekly nutrition plan)")
	if !ok {
		return
	}
	plan, err := b.deps.Coach.GenerateNutritionPlan(ctx, p, nil)
	if err != nil {
		b.fail(chatID, status, "generating your nutrition plan", err)
		return
	}
	if err := b.deps.Nutrition.Upsert(ctx, userID, plan); err != nil {
		b.logger.Warn("failed to save nutrition plan", zap.String("user_id", userID), zap.Error(err))
	}

	planText, shoppingText := formatNutritionMarkdownParts(plan)
	b.deliver(chatID, status, planText)
	if shoppingText != "" {
		b.sendMarkdown(chatID, shoppingText)
	}
}

func (b *Bot) handleClipperRequest(ctx context.Context, chatID int64, url string) {
	status, ok := b.sendStatus(chatID, "✂️ *Clipping recipe...*")
	if !ok {
		return
	}
	recipe, err := b.deps.Clipper.ClipURL(ctx, url)
	if err != nil {
		b.fail(chatID, status, "clipping that recipe", err)
		return
	}
	b.deliver(chatID, status, formatRecipeMarkdown(recipe, url))
}

func (b *Bot) handleChat(ctx context.Context, chatID int64, userID, text string) {
	b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	conversationID, err := b.activeConversation(ctx, userID)
	if err != nil {
		b.logger.Error("failed to resolve conversation", zap.String("user_id", userID), zap.Error(err))
		b.sendPlain(chatID, "❌ Something went wrong. Please try again later.")
		return
	}

	history, err := b.deps.Chats.Messages(ctx, conversationID)
	if err != nil {
		b.logger.Error("failed to load chat history", zap.String("conversation_id", conversationID), zap.Error(err))
		b.sendPlain(chatID, "❌ Something went wrong. Please try again later.")
		return
	}
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	messages := make([]coach.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, coach.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, coach.Message{Role: chat.RoleUser, Content: text})

	p, err := b.deps.Profiles.Get(ctx, userID)
	if err != nil {
		b.logger.Warn("chatting without profile", zap.String("user_id", userID), zap.Error(err))
	}
	reply, err := b.deps.Coach.Chat(ctx, p, messages)
	if err != nil {
		b.logger.Error("coach chat failed", zap.String("user_id", userID), zap.Error(err))
		b.sendPlain(chatID, userMessage("answering", err))
		return
	}

	if err := b.deps.Chats.AddMessages(ctx, conversationID,
		chat.Message{Role: chat.RoleUser, Content: text},
		chat.Message{Role: chat.RoleAssistant, Content: reply},
	); err != nil {
		b.logger.Warn("failed to store chat messages", zap.String("conversation_id", conversationID), zap.Error(err))
	}
	for _, part := range splitMessage(reply, messageLimit) {
		b.sendPlain(chatID, part)
	}
}

// activeConversation returns the conversation of the user's live chat
// session, starting a new one when the last session expired.
func (b *Bot) activeConversation(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	s, err := b.deps.Sessions.GetActive(ctx, userID, SessionCoachChat, now)
	if err != nil {
		return "", err
	}
	if s != nil {
		if err := b.deps.Sessions.Extend(ctx, s.ID, now.Add(chatSessionTTL)); err != nil {
			return "", err
		}
		return s.ConversationID, nil
	}

	conv, err := b.deps.Chats.Create(ctx, userID, "Telegram chat "+now.UTC().Format("2006-01-02"))
	if err != nil {
		return "", err
	}
	if _, err := b.deps.Sessions.Create(ctx, userID, SessionCoachChat, conv.ID, chatSessionTTL); err != nil {
		return "", err
	}
	return conv.ID, nil
}

func (b *Bot) handleNewConversation(ctx context.Context, chatID int64, userID string) {
	s, err := b.deps.Sessions.GetActive(ctx, userID, SessionCoachChat, time.Now())
	if err == nil && s != nil {
		err = b.deps.Sessions.Delete(ctx, s.ID)
	}
	if err != nil {
		b.logger.Error("failed to reset chat session", zap.String("user_id", userID), zap.Error(err))
		b.sendPlain(chatID, "❌ Something went wrong. Please try again later.")
		return
	}
	b.sendPlain(chatID, "🆕 Started a new conversation.")
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if b.cfg.TelegramAdminID == 0 || msg.From.ID != b.cfg.TelegramAdminID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.deps.Metrics.GetDailyUsage(ctx, 7)
	if err != nil {
		b.logger.Error("failed to fetch metrics", zap.Error(err))
		b.sendPlain(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	health := metrics.GetSysHealth(b.cfg.DataDir(), b.startedAt)
	b.sendMarkdown(msg.Chat.ID, formatMetricsMarkdown(usage, health))
}

// sendStatus posts a placeholder that is later replaced by the result.
func (b *Bot) sendStatus(chatID int64, text string) (tgbotapi.Message, bool) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(m)
	if err != nil {
		b.logger.Error("failed to send initial reply", zap.Int64("chat_id", chatID), zap.Error(err))
		return tgbotapi.Message{}, false
	}
	return sent, true
}

// deliver replaces the status message with the first chunk of text and
// sends the rest as new messages.
func (b *Bot) deliver(chatID int64, status tgbotapi.Message, text string) {
	parts := splitMessage(text, messageLimit)
	edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, parts[0])
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit status message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	for _, part := range parts[1:] {
		b.sendMarkdown(chatID, part)
	}
}

func (b *Bot) fail(chatID int64, status tgbotapi.Message, action string, err error) {
	b.logger.Error("request failed", zap.String("action", action), zap.Int64("chat_id", chatID), zap.Error(err))
	edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, userMessage(action, err))
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit status message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(m); err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendPlain(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// userMessage never exposes error details to the chat.
func userMessage(action string, err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindTimeout:
		return fmt.Sprintf("⏱ Timed out while %s. Please try again.", action)
	case apperr.KindValidation:
		return fmt.Sprintf("⚠️ I couldn't use that while %s. Please check it and try again.", action)
	default:
		return fmt.Sprintf("❌ Something went wrong while %s. Please try again later.", action)
	}
}
