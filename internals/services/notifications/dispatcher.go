// file: internals/services/notifications/dispatcher.go
package notifications

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	profileModel "dancestudio_backend/internals/features/users/user_profiles/model"
	emailsvc "dancestudio_backend/internals/services/email"
	logsvc "dancestudio_backend/internals/services/logger"
)

// Notifier is the fire-and-forget fan-out used by the studio flows.
// Notify never reports failure to the caller.
type Notifier interface {
	Notify(ctx context.Context, userIDs []uuid.UUID, kind, title, message, actionRef string)
}

const (
	defaultTimeout  = 10 * time.Second
	maxParallelMail = 4
)

type Dispatcher struct {
	db      *gorm.DB
	mailer  emailsvc.Service
	timeout time.Duration

	wg sync.WaitGroup
}

var _ Notifier = (*Dispatcher)(nil)

func NewDispatcher(db *gorm.DB, mailer emailsvc.Service, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{db: db, mailer: mailer, timeout: timeout}
}

func (d *Dispatcher) Notify(ctx context.Context, userIDs []uuid.UUID, kind, title, message, actionRef string) {
	recipients := Dedupe(userIDs)
	if len(recipients) == 0 {
		return
	}

	// detached from the request so delivery outlives the response
	base := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		if err := d.deliver(ctx, recipients, kind, title, message, actionRef); err != nil {
			logsvc.Error("Notify", err, map[string]interface{}{
				"kind":       kind,
				"recipients": len(recipients),
			})
		}
	}()
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) deliver(ctx context.Context, recipients []uuid.UUID, kind, title, message, actionRef string) error {
	rows := make([]NotificationModel, 0, len(recipients))
	for _, uid := range recipients {
		rows = append(rows, NotificationModel{
			UserID:    uid,
			Kind:      kind,
			Title:     title,
			Message:   nilIfEmpty(message),
			ActionRef: nilIfEmpty(actionRef),
		})
	}
	if err := d.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return errors.Wrap(err, "insert notifications")
	}

	if d.mailer == nil {
		return nil
	}

	var profiles []profileModel.UserProfileModel
	if err := d.db.WithContext(ctx).
		Select("user_id", "first_name", "last_name", "email").
		Where("user_id IN ?", recipients).
		Find(&profiles).Error; err != nil {
		return errors.Wrap(err, "load recipient emails")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelMail)
	for _, p := range profiles {
		if p.Email == nil || strings.TrimSpace(*p.Email) == "" {
			continue
		}
		msg := emailsvc.Message{
			To:          []mail.Address{{Name: fullName(p), Address: strings.TrimSpace(*p.Email)}},
			Subject:     title,
			TextContent: message,
		}
		g.Go(func() error {
			return d.mailer.Send(gctx, msg)
		})
	}
	return g.Wait()
}

// Dedupe keeps the first occurrence of every non-nil id.
func Dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func fullName(p profileModel.UserProfileModel) string {
	var parts []string
	if p.FirstName != nil && *p.FirstName != "" {
		parts = append(parts, *p.FirstName)
	}
	if p.LastName != nil && *p.LastName != "" {
		parts = append(parts, *p.LastName)
	}
	return strings.Join(parts, " ")
}
