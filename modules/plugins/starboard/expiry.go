package starboard

import (
	"time"

	"github.com/RichardKnop/machinery/v1"
	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/pkg/errors"
)

const (
	// ReviewExpiryTask is the machinery task name of ExpireReviewTask
	ReviewExpiryTask = "starboard_expire_review"
)

// ReviewScheduler schedules the expiry of a review queue message
type ReviewScheduler interface {
	ScheduleReviewExpiry(channelID, messageID string, at time.Time) error
}

// MachineryScheduler sends delayed review expiry tasks to the machinery broker
type MachineryScheduler struct {
	server *machinery.Server
}

func NewMachineryScheduler(server *machinery.Server) *MachineryScheduler {
	return &MachineryScheduler{server: server}
}

func (m *MachineryScheduler) ScheduleReviewExpiry(channelID, messageID string, at time.Time) error {
	signature := ReviewExpirySignature(channelID, messageID)
	signature.ETA = &at

	_, err := m.server.SendTask(signature)
	return errors.Wrap(err, "sending review expiry task failed")
}

func ReviewExpirySignature(channelID, messageID string) (signature *tasks.Signature) {
	signature = &tasks.Signature{
		Name: ReviewExpiryTask,
		Args: []tasks.Arg{
			{
				Type:  "string",
				Value: channelID,
			},
			{
				Type:  "string",
				Value: messageID,
			},
		},
	}
	signature.RetryCount = 3
	signature.OnError = []*tasks.Signature{{Name: "log_error"}}
	return signature
}
