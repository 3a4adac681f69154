package models_test

import (
	"testing"
	"time"

	"inkbook/internal/models"
	"inkbook/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityLookup(t *testing.T) {
	assert.Equal(t, 8, models.PriorityFor(models.ProjectSleeve))
	assert.Equal(t, 2, models.PriorityFor(models.ProjectTouchUp))
	assert.Equal(t, models.DefaultPriority, models.PriorityFor("portrait"))
}

func TestClampPriority(t *testing.T) {
	assert.Equal(t, 1, models.ClampPriority(-3))
	assert.Equal(t, 1, models.ClampPriority(0))
	assert.Equal(t, 7, models.ClampPriority(7))
	assert.Equal(t, 10, models.ClampPriority(42))

	inq := &models.ContactInquiry{}
	inq.SetPriority(99)
	assert.Equal(t, 10, inq.Priority)
}

func TestMarkAsReadStartsHandling(t *testing.T) {
	now := time.Now()
	inq := &models.ContactInquiry{Status: models.InquiryPending}
	assert.False(t, inq.IsRead())

	require.NoError(t, inq.MarkAsRead(now))
	assert.True(t, inq.IsRead())
	assert.Equal(t, models.InquiryInProgress, inq.Status)
	require.NotNil(t, inq.ReadAt)
	assert.Equal(t, now, *inq.ReadAt)

	later := now.Add(time.Hour)
	require.NoError(t, inq.MarkAsRead(later))
	assert.Equal(t, now, *inq.ReadAt, "read_at is stamped only once")
}

func TestRecordReplyComputesResponseTime(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	inq := &models.ContactInquiry{Status: models.InquiryPending}
	inq.CreatedAt = created

	require.NoError(t, inq.RecordReply("Sure, let's talk", created.Add(90*time.Minute)))
	assert.Equal(t, models.InquiryReplied, inq.Status)
	require.NotNil(t, inq.ResponseTimeMinutes)
	assert.Equal(t, 90, *inq.ResponseTimeMinutes)
	assert.True(t, inq.IsRead(), "replying implies the inquiry was read")
	assert.Equal(t, "Sure, let's talk", inq.ReplyMessage)
}

func TestSpamIsTerminal(t *testing.T) {
	now := time.Now()
	inq := &models.ContactInquiry{Status: models.InquiryPending}
	require.NoError(t, inq.MarkAsSpam())

	err := inq.RecordReply("hi", now)
	assert.True(t, apperror.IsInvalidState(err))
	assert.True(t, apperror.IsInvalidState(inq.Close(now)))
	assert.True(t, apperror.IsInvalidState(inq.MarkAsRead(now)))
	assert.Equal(t, models.InquirySpam, inq.Status)
}

func TestCloseAndReopen(t *testing.T) {
	now := time.Now()
	inq := &models.ContactInquiry{Status: models.InquiryReplied}

	require.NoError(t, inq.Close(now))
	assert.Equal(t, models.InquiryClosed, inq.Status)
	assert.NotNil(t, inq.ClosedAt)

	require.NoError(t, inq.ApplyStatus(models.InquiryInProgress, now))
	assert.Equal(t, models.InquiryInProgress, inq.Status)
	assert.Nil(t, inq.ClosedAt)
}

func TestApplyStatusRejectsPendingAndReplied(t *testing.T) {
	inq := &models.ContactInquiry{Status: models.InquiryInProgress}
	assert.True(t, apperror.IsInvalidState(inq.ApplyStatus(models.InquiryPending, time.Now())))
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(inq.ApplyStatus(models.InquiryReplied, time.Now())))
}

func TestStatusTransitionTable(t *testing.T) {
	assert.True(t, models.InquiryPending.CanTransitionTo(models.InquiryClosed))
	assert.True(t, models.InquiryClosed.CanTransitionTo(models.InquiryInProgress))
	assert.False(t, models.InquiryClosed.CanTransitionTo(models.InquiryReplied))
	assert.False(t, models.InquirySpam.CanTransitionTo(models.InquiryPending))
	assert.False(t, models.InquiryStatus("archived").Valid())
}
