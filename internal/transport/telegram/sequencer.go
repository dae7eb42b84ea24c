package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/transcodehub/transcodebot/pkg/logger"
)

const laneBacklog = 16

// sequencer fans updates out into one FIFO lane per chat. Within a lane
// updates are handled strictly in arrival order even when handling one
// of them takes minutes; different chats never wait on each other.
type sequencer struct {
	logger logger.Logger
	handle func(ctx context.Context, update tgbotapi.Update)

	mu    sync.Mutex
	lanes map[int64]chan tgbotapi.Update
}

func newSequencer(log logger.Logger, handle func(ctx context.Context, update tgbotapi.Update)) *sequencer {
	return &sequencer{
		logger: log,
		handle: handle,
		lanes:  make(map[int64]chan tgbotapi.Update),
	}
}

// Enqueue routes an update to its chat's lane without blocking the
// caller. A lane whose backlog is full drops the update with a warning
// rather than stall every other chat.
func (s *sequencer) Enqueue(ctx context.Context, update tgbotapi.Update) {
	key := chatKey(update)
	if key == 0 {
		go s.handle(ctx, update)
		return
	}

	s.mu.Lock()
	lane, ok := s.lanes[key]
	if !ok {
		lane = make(chan tgbotapi.Update, laneBacklog)
		s.lanes[key] = lane
		go s.consume(ctx, lane)
	}
	s.mu.Unlock()

	select {
	case lane <- update:
	default:
		s.logger.Warnf("chat %d: update backlog full, dropping update %d", key, update.UpdateID)
	}
}

func (s *sequencer) consume(ctx context.Context, lane <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-lane:
			s.handle(ctx, update)
		}
	}
}

func chatKey(u tgbotapi.Update) int64 {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID
	}
	return 0
}
