package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/admindata/internal/domain"
)

const SignalChannel = "admindata:invalidate"

// SignalService carries type invalidations between server instances.
type SignalService struct {
	rdb    *redis.Client
	origin string
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb:    redisClient,
		origin: uuid.NewString(),
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.Event) error {
	event.Origin = s.origin

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, SignalChannel, jsonstr).Err()
	if err != nil {
		return errors.Wrap(err, "publish signal")
	}

	return nil
}

// Listen calls handle for every event published by another instance until
// ctx is done.
func (s *SignalService) Listen(ctx context.Context, handle func(domain.Event)) error {
	pubsub := s.rdb.Subscribe(ctx, SignalChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribe signal")
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.Warn(
					"malformed signal",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if event.Origin == s.origin {
				continue
			}
			handle(event)
		}
	}
}
