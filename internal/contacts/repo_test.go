package contacts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lynk-ai/lynk-backend/pkg/db/dbtest"
	"github.com/lynk-ai/lynk-backend/pkg/db/models"
	"github.com/lynk-ai/lynk-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCommunicationRollsBackWhenContactMissing(t *testing.T) {
	db := dbtest.Open(t)
	repository := NewRepository(db)

	err := repository.AppendCommunication(context.Background(), uuid.New(), &models.MarketingCommunication{
		Channel:     enums.CommunicationChannelEmail,
		Subject:     "Welcome",
		Body:        "Welcome email sent successfully",
		SentAt:      time.Now().UTC(),
		MessageType: enums.MessageTypeWelcome,
		Status:      enums.DeliveryStatusSent,
		Success:     true,
	})
	require.Error(t, err)

	var rows int64
	require.NoError(t, db.Model(&models.MarketingCommunication{}).Count(&rows).Error)
	assert.Zero(t, rows, "the log row must not survive a failed append")
}
