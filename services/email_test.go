package services

import (
	"testing"

	"court_transfer_app_go/config"
	"court_transfer_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDecisionEmail(t *testing.T) {
	t.Run("Approval with cascade", func(t *testing.T) {
		email, err := BuildDecisionEmail("owner@example.com", DecisionEmailData{
			OwnerName:          "Ayse Yilmaz",
			RequestID:          42,
			StatusName:         "Approved",
			CourthouseName:     "Ankara Courthouse",
			CascadedRequestIDs: []uint{43, 44},
			Link:               "http://localhost:5173/transfer-requests",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"owner@example.com"}, email.To)
		assert.Equal(t, "Transfer request #42 approved", email.Subject)
		assert.Contains(t, email.TextBody, "Dear Ayse Yilmaz")
		assert.Contains(t, email.TextBody, "Ankara Courthouse")
		assert.Contains(t, email.TextBody, "#43, #44")
		assert.Contains(t, email.HTMLBody, "Ayse Yilmaz")
	})

	t.Run("Rejection without cascade", func(t *testing.T) {
		email, err := BuildDecisionEmail("owner@example.com", DecisionEmailData{
			OwnerName:  "Ayse Yilmaz",
			RequestID:  7,
			StatusName: "Rejected",
		})
		require.NoError(t, err)

		assert.Equal(t, "Transfer request #7 rejected", email.Subject)
		assert.NotContains(t, email.TextBody, "active courthouse")
		assert.NotContains(t, email.TextBody, "rejected automatically")
	})

	t.Run("HTML body escapes names", func(t *testing.T) {
		email, err := BuildDecisionEmail("owner@example.com", DecisionEmailData{
			OwnerName:  "<b>Mallory</b>",
			RequestID:  1,
			StatusName: "Rejected",
		})
		require.NoError(t, err)
		assert.NotContains(t, email.HTMLBody, "<b>Mallory</b>")
	})
}

func TestSendEmail(t *testing.T) {
	email := &Email{To: []string{"a@example.com"}, Subject: "s", TextBody: "body"}

	t.Run("Test mode logs instead of sending", func(t *testing.T) {
		cfg := &config.Config{EmailTestMode: true}
		assert.NoError(t, SendEmail(cfg, email))
	})

	t.Run("Missing API key", func(t *testing.T) {
		cfg := &config.Config{EmailTestMode: false}
		err := SendEmail(cfg, email)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "RESEND_API_KEY")
	})

	t.Run("Empty body", func(t *testing.T) {
		cfg := &config.Config{EmailTestMode: false, ResendAPIKey: "re_test"}
		err := SendEmail(cfg, &Email{To: []string{"a@example.com"}, Subject: "s"})
		assert.Error(t, err)
	})
}

func TestEmailNotifier(t *testing.T) {
	testDB := setupTestDB(t)
	owner := createUser(t, testDB, 1001)
	var courthouse models.Courthouse
	require.NoError(t, testDB.First(&courthouse, owner.ActiveCourthouseID).Error)

	var sent []*Email
	notifier := NewEmailNotifier(&config.Config{AppURL: "http://app.local/"}).WithDB(testDB)
	notifier.send = func(_ *config.Config, email *Email) { sent = append(sent, email) }

	t.Run("Approval names the new courthouse", func(t *testing.T) {
		sent = nil
		request := &models.TransferRequest{ID: 5, StatusID: models.StatusApproved}
		notifier.NotifyDecision(owner, request, []uint{6})

		require.Len(t, sent, 1)
		assert.Equal(t, []string{owner.Email}, sent[0].To)
		assert.Contains(t, sent[0].TextBody, courthouse.Name)
		assert.Contains(t, sent[0].TextBody, "#6")
		assert.Contains(t, sent[0].TextBody, "http://app.local/transfer-requests")
	})

	t.Run("Owner without address is skipped", func(t *testing.T) {
		sent = nil
		noMail := *owner
		noMail.Email = ""
		notifier.NotifyDecision(&noMail, &models.TransferRequest{ID: 5, StatusID: models.StatusRejected}, nil)
		assert.Empty(t, sent)
	})
}
