package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
	"github.com/lostudea/lostudea-api/pkg/mailer"
)

// MailQueue enqueues email jobs for the match worker. Satisfied by
// helpers.RabbitPublisher.
type MailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// MatchLifecycle coordinates the state transition that happens when a
// seeker confirms that a found report is their object. The three writes
// (create match, flip lost status, flip found status) run as one backing
// store transaction, so a crash or error mid-sequence cannot leave a match
// record pointing at un-flipped reports.
type MatchLifecycle struct {
	Matches repository.MatchRepository
	Users   repository.UserRepository
	Mail    MailQueue
	Logger  *logrus.Logger
}

func NewMatchLifecycle(matches repository.MatchRepository, users repository.UserRepository, mail MailQueue, logger *logrus.Logger) *MatchLifecycle {
	return &MatchLifecycle{Matches: matches, Users: users, Mail: mail, Logger: logger}
}

// Confirm executes the match transition and, on success, enqueues a
// notification email for the seeker. The email is best-effort: a queue
// failure is logged and the confirmed match is still returned.
func (c *MatchLifecycle) Confirm(ctx context.Context, lost *entity.LostItem, found *entity.FoundItem) (*entity.Match, error) {
	match, err := c.Matches.Confirm(ctx, lost.ID, found.ID)
	if err != nil {
		return nil, err
	}

	c.notifySeeker(ctx, lost, found, match)
	return match, nil
}

// Advance moves a match to a later lifecycle state. Staff verify a match
// after checking the seeker's description against the held object, and
// complete it at hand-back.
func (c *MatchLifecycle) Advance(ctx context.Context, matchID string, status entity.MatchStatus) error {
	return c.Matches.UpdateStatus(ctx, matchID, status)
}

// NotifyDelivered enqueues the hand-back email once staff mark a matched
// object as delivered. Best-effort, like the confirmation email.
func (c *MatchLifecycle) NotifyDelivered(ctx context.Context, seekerID, itemTypeLabel string) {
	if c.Mail == nil {
		return
	}
	seeker, err := c.Users.GetByID(ctx, seekerID)
	if err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).WithField("seeker_id", seekerID).Warn("delivery email skipped, seeker lookup failed")
		}
		return
	}
	job := mailer.EmailJob{
		To:       seeker.Email,
		Template: mailer.TemplateItemDelivered,
		Data: map[string]any{
			"FullName": seeker.FullName,
			"ItemType": itemTypeLabel,
		},
	}
	if err := c.Mail.PublishJSON(ctx, job); err != nil && c.Logger != nil {
		c.Logger.WithError(err).WithField("seeker_id", seekerID).Warn("delivery email enqueue failed")
	}
}

func (c *MatchLifecycle) notifySeeker(ctx context.Context, lost *entity.LostItem, found *entity.FoundItem, match *entity.Match) {
	if c.Mail == nil {
		return
	}
	seeker, err := c.Users.GetByID(ctx, lost.SeekerID)
	if err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).WithField("seeker_id", lost.SeekerID).Warn("match confirmed but seeker lookup failed")
		}
		return
	}

	job := mailer.EmailJob{
		To:       seeker.Email,
		Template: mailer.TemplateMatchFound,
		Data: map[string]any{
			"FullName":   seeker.FullName,
			"ItemType":   lost.Type.Label,
			"Location":   string(found.Location),
			"MatchDate":  match.MatchDate.Format(time.RFC3339),
			"MatchID":    match.ID,
			"LostItemID": lost.ID,
		},
	}
	if err := c.Mail.PublishJSON(ctx, job); err != nil && c.Logger != nil {
		c.Logger.WithError(err).WithField("match_id", match.ID).Warn("match email enqueue failed")
	}
}
