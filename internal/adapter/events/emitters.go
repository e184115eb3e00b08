// Package events delivers committed ledger events to observers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lenoa-backend/internal/domain/event"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultChannel = "lenoa:events"

// RedisPublisher publishes each event as JSON on a pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Channel() string { return p.channel }

func (p *RedisPublisher) Emit(ctx context.Context, ev event.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("events: publish %s: %w", ev.Type, err)
	}
	return nil
}

// LogEmitter writes one structured line per event.
type LogEmitter struct {
	log *logrus.Logger
}

func NewLogEmitter(log *logrus.Logger) *LogEmitter { return &LogEmitter{log: log} }

func (l *LogEmitter) Emit(_ context.Context, ev event.Event) error {
	fields := logrus.Fields{
		"event_id": ev.ID.String(),
		"event":    ev.Type,
		"loan_id":  ev.LoanID,
	}
	for k, v := range ev.Attributes {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	l.log.WithFields(fields).Info("event")
	return nil
}

// Multi fans an event out to every emitter and joins their errors.
type Multi []event.Emitter

func (m Multi) Emit(ctx context.Context, ev event.Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
