package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bibliodesk/library-service/internal/errs"
	"github.com/bibliodesk/library-service/internal/model"
	"github.com/bibliodesk/library-service/internal/repository"
)

type NotificationService struct {
	log  *zap.Logger
	repo repository.Repository
	now  func() time.Time
}

func NewNotificationService(repo repository.Repository, log *zap.Logger) *NotificationService {
	return &NotificationService{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

func (s *NotificationService) ListForIdentity(ctx context.Context, email string) ([]model.Notification, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNotificationsByUser(ctx, user.ID, false)
}

func (s *NotificationService) ListUnreadForIdentity(ctx context.Context, email string) ([]model.Notification, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNotificationsByUser(ctx, user.ID, true)
}

// MarkRead flips the read flag. Only the recipient may do it; marking
// an already-read notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, email string) (model.Notification, error) {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return model.Notification{}, err
	}

	actor, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return model.Notification{}, err
	}
	if n.UserID != actor.ID {
		return model.Notification{}, errs.ErrForbidden
	}

	if n.ReadFlag {
		return n, nil
	}
	if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
		return model.Notification{}, err
	}
	n.ReadFlag = true
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id int64, email string) error {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return err
	}

	actor, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if n.UserID != actor.ID {
		return errs.ErrForbidden
	}

	return s.repo.DeleteNotification(ctx, id)
}

func (s *NotificationService) Create(ctx context.Context, userID int64, message string) (model.Notification, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return model.Notification{}, err
	}
	return s.repo.CreateNotification(ctx, model.Notification{
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now().UTC(),
	})
}

// NotifyLibrariansAboutOverdueBeyondOneWeek posts one identical summary
// to every librarian when loans exist that are overdue by more than
// seven days. No loans, no notifications.
func (s *NotificationService) NotifyLibrariansAboutOverdueBeyondOneWeek(ctx context.Context) error {
	t := s.now().UTC()
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	limit := today.AddDate(0, 0, -7)

	overdue, err := s.repo.ListOverdueLoans(ctx, limit)
	if err != nil {
		return err
	}
	if len(overdue) == 0 {
		return nil
	}

	message := fmt.Sprintf("There are %d loans overdue by more than one week.", len(overdue))

	librarians, err := s.repo.ListUsersByRole(ctx, model.RoleLibrarian)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, librarian := range librarians {
		librarian := librarian
		g.Go(func() error {
			_, err := s.repo.CreateNotification(gctx, model.Notification{
				UserID:    librarian.ID,
				Message:   message,
				CreatedAt: s.now().UTC(),
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.log.Info("librarian overdue broadcast",
		zap.Int("loans", len(overdue)),
		zap.Int("librarians", len(librarians)))
	return nil
}
