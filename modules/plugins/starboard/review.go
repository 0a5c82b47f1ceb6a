package starboard

import (
	"context"

	"github.com/Seklfreak/robyul-starboard/metrics"
	"github.com/Seklfreak/robyul-starboard/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	notModeratorNotice     = "Only starboard moderators can review entries."
	reviewInProgressNotice = "This entry is already being reviewed."
	alreadyReviewedNotice  = "This entry has already been reviewed."
)

// OnComponent handles the accept and deny buttons of review queue messages
func (e *Engine) OnComponent(ctx context.Context, event ComponentEvent) error {
	var decision models.StarStatus
	switch event.CustomID {
	case AcceptCustomID:
		decision = models.StarStatusAccepted
	case DenyCustomID:
		decision = models.StarStatusDenied
	default:
		return nil
	}

	if !e.config.IsModerator(event.UserID) {
		return e.notice(ctx, event, notModeratorNotice)
	}

	if !e.guard.TryBegin(event.MessageID) {
		return e.notice(ctx, event, reviewInProgressNotice)
	}
	defer e.guard.End(event.MessageID)

	entry, err := e.store.FindByPromotedID(ctx, event.MessageID)
	if errors.Is(err, ErrEntryNotFound) {
		return e.notice(ctx, event, alreadyReviewedNotice)
	}
	if err != nil {
		return errors.Wrapf(err, "looking up review message #%s failed", event.MessageID)
	}
	if entry.Status != models.StarStatusInReview || entry.ReviewMessageID != event.MessageID {
		return e.notice(ctx, event, alreadyReviewedNotice)
	}

	err = e.platform.RespondToComponent(ctx, event, ComponentResponse{Deferred: true})
	if err != nil {
		return errors.Wrap(err, "acknowledging review button failed")
	}

	update := StatusUpdate{
		Status:      decision,
		ModeratorID: event.UserID,
	}

	reviewed := entry
	reviewed.Status = decision
	reviewed.ReviewedByUserID = event.UserID

	if decision == models.StarStatusAccepted {
		publicMessage, err := e.platform.SendMessage(ctx, e.config.PublicChannelID, e.presenter.Render(reviewed, false))
		if err != nil {
			return errors.Wrapf(err, "posting #%s to the public channel failed", entry.OriginMessageID)
		}
		update.PromotedChannelID = e.config.PublicChannelID
		update.PromotedMessageID = publicMessage.ID
		reviewed.PromotedChannelID = update.PromotedChannelID
		reviewed.PromotedMessageID = update.PromotedMessageID
	}

	err = e.store.UpdateStatus(ctx, entry.ID, update)
	if err != nil {
		if update.PromotedMessageID != "" {
			// the entry stays in review, the next accept posts a new copy
			e.deleteOrphan(ctx, update.PromotedChannelID, update.PromotedMessageID)
		}
		return errors.Wrapf(err, "storing review decision of #%s failed", entry.OriginMessageID)
	}

	if reviewed.PromotedMessageID != entry.PromotedMessageID {
		e.reactors.Evict(entry.PromotedMessageID)
	}

	metrics.StarboardReviews.WithLabelValues(string(decision)).Inc()
	e.logger.WithFields(logrus.Fields{
		"messageID":   entry.OriginMessageID,
		"moderatorID": event.UserID,
		"decision":    decision,
	}).Info("reviewed starboard entry")

	err = e.platform.EditMessage(ctx, event.ChannelID, event.MessageID, e.presenter.RenderReviewed(reviewed))
	return errors.Wrapf(err, "editing review message #%s failed", event.MessageID)
}

// ExpireReview removes the buttons from a review message nobody decided on.
// The entry stays in review, a later star brings the buttons back.
func (e *Engine) ExpireReview(ctx context.Context, channelID, messageID string) error {
	if !e.guard.TryBegin(messageID) {
		// a moderator is deciding right now
		return nil
	}
	defer e.guard.End(messageID)

	entry, err := e.store.FindByPromotedID(ctx, messageID)
	if errors.Is(err, ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "looking up review message #%s failed", messageID)
	}
	if entry.Status != models.StarStatusInReview || entry.ReviewMessageID != messageID {
		return nil
	}

	err = e.platform.EditMessage(ctx, channelID, messageID, e.presenter.RenderReviewed(entry))
	if errors.Is(err, ErrUnknownMessage) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "expiring review message #%s failed", messageID)
	}

	metrics.StarboardReviews.WithLabelValues("expired").Inc()
	e.logger.WithField("messageID", entry.OriginMessageID).Info("review timed out")
	return nil
}

// deleteOrphan removes a public copy whose entry could not be updated
func (e *Engine) deleteOrphan(ctx context.Context, channelID, messageID string) {
	err := e.platform.DeleteMessage(ctx, channelID, messageID)
	if err != nil && !errors.Is(err, ErrUnknownMessage) {
		e.logger.WithFields(logrus.Fields{
			"channelID": channelID,
			"messageID": messageID,
		}).Warnf("unable to delete orphaned public copy: %s", err.Error())
		metrics.StarboardSuppressedErrors.WithLabelValues("delete_orphan").Inc()
	}
}

func (e *Engine) notice(ctx context.Context, event ComponentEvent, content string) error {
	err := e.platform.RespondToComponent(ctx, event, ComponentResponse{
		Content:   content,
		Ephemeral: true,
	})
	return errors.Wrap(err, "sending review notice failed")
}
