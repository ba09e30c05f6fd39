// Package services is the marketplace core: every operation that changes an
// assignment, bid, chat or payment goes through a Core.
package services

import (
	"time"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/anjiri1684/assignment_bidding/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=core.go -destination=mock_mailer_test.go -package=services

// Mailer sends best-effort notices. Failures never reach the caller.
type Mailer interface {
	SendEmail(toName, toEmail, subject, htmlContent string)
}

type noopMailer struct{}

func (noopMailer) SendEmail(string, string, string, string) {}

type Core struct {
	store    *store.Store
	hub      realtime.Broadcaster
	mailer   Mailer
	targeted bool
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*Core)

func WithMailer(m Mailer) Option {
	return func(c *Core) {
		if m != nil {
			c.mailer = m
		}
	}
}

// WithTargetedDelivery sends lifecycle events to the user rooms of the
// interested parties instead of to every connection.
func WithTargetedDelivery(on bool) Option {
	return func(c *Core) { c.targeted = on }
}

func WithClock(now func() time.Time) Option {
	return func(c *Core) { c.now = now }
}

func NewCore(st *store.Store, hub realtime.Broadcaster, opts ...Option) *Core {
	c := &Core{
		store:    st,
		hub:      hub,
		mailer:   noopMailer{},
		now:      time.Now,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Core) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}

// emit sends a lifecycle event globally, or to each audience member's user
// room when targeted delivery is on.
func (c *Core) emit(event string, payload any, audience ...uuid.UUID) {
	if !c.targeted {
		c.hub.Emit(event, payload)
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(audience))
	for _, id := range audience {
		if _, dup := seen[id]; dup || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		c.hub.EmitToRoom(realtime.UserRoom(id), event, payload)
	}
}

// notFound maps a store lookup failure onto the caller-facing error.
func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound(what + " not found")
	}
	return unexpected(err)
}

func unexpected(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Unexpected(err)
}

// bestEffort logs a failed side effect that must not undo the committed write.
func bestEffort(err error, what string, fields log.Fields) {
	if err != nil {
		log.WithError(err).WithFields(fields).Warnf("⚠️ %s failed", what)
	}
}
