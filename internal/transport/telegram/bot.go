// Package telegram adapts the pipeline to the Telegram Bot API: inbound
// updates become session events, outbound notifications become chat
// messages and uploads.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/transcodehub/transcodebot/internal/artifacts"
	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/jobs"
	"github.com/transcodehub/transcodebot/internal/models"
	"github.com/transcodehub/transcodebot/internal/session"
	"github.com/transcodehub/transcodebot/internal/settings"
	"github.com/transcodehub/transcodebot/internal/validate"
	"github.com/transcodehub/transcodebot/pkg/logger"
	"github.com/transcodehub/transcodebot/pkg/utils"
)

const downloadTimeout = 5 * time.Minute

// Snapshotter exposes the in-flight job list for the operator command.
type Snapshotter interface {
	Snapshot() []jobs.JobView
}

type Bot struct {
	cfg      *config.Config
	logger   logger.Logger
	api      *tgbotapi.BotAPI
	store    *artifacts.Store
	settings settings.UseCase
	pool     Snapshotter
	client   *http.Client

	manager session.Manager

	mu           sync.Mutex
	progressMsgs map[int64]int
}

func NewBot(cfg *config.Config, log logger.Logger, store *artifacts.Store, settingsUC settings.UseCase, pool Snapshotter) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram.NewBot.NewBotAPI")
	}
	api.Debug = cfg.Bot.Debug
	log.Infof("authorized on telegram account %s", api.Self.UserName)
	return &Bot{
		cfg:          cfg,
		logger:       log,
		api:          api,
		store:        store,
		settings:     settingsUC,
		pool:         pool,
		client:       &http.Client{Timeout: downloadTimeout},
		progressMsgs: make(map[int64]int),
	}, nil
}

// Bind attaches the session manager. The manager needs this bot as its
// transport, so the dependency closes here rather than in the
// constructor.
func (b *Bot) Bind(manager session.Manager) {
	b.manager = manager
}

// Run consumes updates until ctx is cancelled. Updates are serialized
// per chat: a large download ahead of a small one must still dispatch
// first, or the session would see them out of order.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	seq := newSequencer(b.logger, b.handleUpdate)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			seq.Enqueue(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("panic in update handler: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.Chat.ID

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Video != nil || msg.Document != nil:
		b.handleFile(ctx, msg)
	default:
		b.send(userID, "Send me a video file to get started, or /help for the full list of commands.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.Chat.ID

	switch msg.Command() {
	case "start", "help":
		b.send(userID, helpText)
	case "cancel":
		if err := b.manager.Dispatch(ctx, userID, session.Cancel{}); err != nil {
			b.reportDispatchError(ctx, userID, err)
		}
	case "settings":
		b.sendSettings(ctx, userID)
	case "queue":
		if userID != b.cfg.Bot.AdminID {
			b.send(userID, "This command is restricted.")
			return
		}
		b.send(userID, formatQueue(b.pool.Snapshot()))
	default:
		b.send(userID, "Unknown command. Try /help.")
	}
}

// handleFile downloads an uploaded video or subtitle into a fresh
// artifact and dispatches it into the session. On rejection the session
// manager releases the artifact; this handler only reports the reason.
func (b *Bot) handleFile(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.Chat.ID
	fileID, meta := extractFile(msg)
	if fileID == "" {
		b.send(userID, "I could not read that attachment.")
		return
	}

	var (
		kind  artifacts.Kind
		event func(a *artifacts.Artifact) session.Event
	)
	switch {
	case validate.IsVideoName(meta.Name):
		kind = artifacts.KindVideo
		event = func(a *artifacts.Artifact) session.Event {
			return session.VideoReceived{Artifact: a, Meta: meta}
		}
	case validate.IsSubtitleName(meta.Name):
		kind = artifacts.KindSubtitle
		event = func(a *artifacts.Artifact) session.Event {
			return session.SubtitleReceived{Artifact: a, Meta: meta}
		}
	default:
		b.send(userID, fmt.Sprintf("Sorry, %q is not a format I can work with.", meta.Name))
		return
	}

	// Size is known before download; reject oversized files without
	// wasting the bandwidth.
	limit := b.cfg.Files.MaxVideoSize
	if kind == artifacts.KindSubtitle {
		limit = b.cfg.Files.MaxSubtitleSize
	}
	if meta.Size > limit {
		b.send(userID, fmt.Sprintf("That file is %s; the limit is %s.", utils.FormatSize(meta.Size), utils.FormatSize(limit)))
		return
	}

	artifact := b.store.Acquire(fmt.Sprintf("in_u%d", userID), kind, meta.Ext())
	if err := b.download(ctx, fileID, artifact.Path); err != nil {
		_ = artifact.Release()
		b.logger.Errorf("user %d: download failed: %v", userID, err)
		b.send(userID, "Downloading your file failed, please try again.")
		return
	}

	if err := b.manager.Dispatch(ctx, userID, event(artifact)); err != nil {
		b.reportDispatchError(ctx, userID, err)
	}
}

func (b *Bot) download(ctx context.Context, fileID, dst string) error {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return errors.Wrap(err, "GetFileDirectURL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "NewRequest")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "client.Do")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected download status %d", resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "os.Create")
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrap(err, "io.Copy")
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.Message.Chat.ID
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Debugf("callback ack failed: %v", err)
	}

	data := cb.Data
	switch {
	case data == callbackOpSubtitles:
		b.dispatchAndReport(ctx, userID, session.OperationChosen{Op: models.OperationBurnSubtitles})
	case data == callbackOpResolution:
		b.dispatchAndReport(ctx, userID, session.OperationChosen{Op: models.OperationChangeResolution})
	case data == callbackCancel:
		b.dispatchAndReport(ctx, userID, session.Cancel{})
	case strings.HasPrefix(data, callbackResPrefix):
		token := strings.TrimPrefix(data, callbackResPrefix)
		b.dispatchAndReport(ctx, userID, session.ResolutionChosen{Token: token})
	case strings.HasPrefix(data, callbackSetPrefix):
		b.handleSettingsCallback(ctx, userID, strings.TrimPrefix(data, callbackSetPrefix))
	default:
		b.logger.Warnf("user %d: unknown callback %q", userID, data)
	}
}

func (b *Bot) dispatchAndReport(ctx context.Context, userID int64, ev session.Event) {
	if err := b.manager.Dispatch(ctx, userID, ev); err != nil {
		b.reportDispatchError(ctx, userID, err)
	}
}

func (b *Bot) sendSettings(ctx context.Context, userID int64) {
	prefs, err := b.settings.Get(ctx, userID)
	if err != nil {
		b.logger.Errorf("user %d: settings load failed: %v", userID, err)
		b.send(userID, "Could not load your settings right now.")
		return
	}
	msg := tgbotapi.NewMessage(userID, formatSettings(prefs))
	msg.ReplyMarkup = settingsKeyboard(prefs)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("user %d: settings send failed: %v", userID, err)
	}
}

func (b *Bot) handleSettingsCallback(ctx context.Context, userID int64, action string) {
	prefs, err := b.settings.Get(ctx, userID)
	if err != nil {
		b.logger.Errorf("user %d: settings load failed: %v", userID, err)
		return
	}

	switch action {
	case "upload:video":
		prefs.UploadType = models.UploadTypeVideo
	case "upload:document":
		prefs.UploadType = models.UploadTypeDocument
	case "notify:on":
		prefs.NotifyDone = true
	case "notify:off":
		prefs.NotifyDone = false
	default:
		b.logger.Warnf("user %d: unknown settings action %q", userID, action)
		return
	}

	updated, err := b.settings.Update(ctx, prefs)
	if err != nil {
		b.logger.Errorf("user %d: settings update failed: %v", userID, err)
		b.send(userID, "Could not save your settings right now.")
		return
	}
	msg := tgbotapi.NewMessage(userID, formatSettings(updated))
	msg.ReplyMarkup = settingsKeyboard(updated)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("user %d: settings send failed: %v", userID, err)
	}
}

func extractFile(msg *tgbotapi.Message) (string, models.FileMeta) {
	switch {
	case msg.Video != nil:
		v := msg.Video
		name := v.FileName
		if name == "" {
			name = "video.mp4"
		}
		return v.FileID, models.FileMeta{
			Name:     name,
			Size:     int64(v.FileSize),
			MIME:     v.MimeType,
			Duration: float64(v.Duration),
		}
	case msg.Document != nil:
		d := msg.Document
		return d.FileID, models.FileMeta{
			Name: d.FileName,
			Size: int64(d.FileSize),
			MIME: d.MimeType,
		}
	}
	return "", models.FileMeta{}
}

func (b *Bot) send(userID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		b.logger.Errorf("user %d: send failed: %v", userID, err)
	}
}

func (b *Bot) reportDispatchError(ctx context.Context, userID int64, err error) {
	b.ReportError(ctx, userID, err)
}
