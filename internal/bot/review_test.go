package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"village-gate/internal/application/models"
)

type ReviewSuite struct {
	suite.Suite
	ctx context.Context
	fix *botFixture
}

func TestReviewSuite(t *testing.T) {
	suite.Run(t, new(ReviewSuite))
}

func (s *ReviewSuite) SetupTest() {
	s.ctx = context.Background()
	s.fix = newBotFixture()
	s.fix.register(s.T(), testApplicantID)
}

func (s *ReviewSuite) decision(adminID int64, approve bool) Decision {
	return Decision{
		Sender:      Sender{ID: adminID, Username: "admin"},
		ChatID:      adminID,
		ApplicantID: testApplicantID,
		Approve:     approve,
		CallbackID:  "cb-1",
		MessageID:   77,
		MessageText: "заявка",
	}
}

func (s *ReviewSuite) TestNonAdminIsDenied() {
	s.fix.router.Dispatch(s.ctx, s.decision(testApplicantID, true))

	s.Require().Len(s.fix.transport.callbacks, 1)
	s.Equal(msgDecisionDenied, s.fix.transport.callbacks[0].Text)
	s.True(s.fix.transport.callbacks[0].Alert)

	app, err := s.fix.apps.Get(s.ctx, testApplicantID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, app.Status)
}

func (s *ReviewSuite) TestApprove() {
	s.fix.router.Dispatch(s.ctx, s.decision(testAdminID, true))

	app, err := s.fix.apps.Get(s.ctx, testApplicantID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, app.Status)

	s.Require().Len(s.fix.transport.invites, 1)
	s.Equal(testGroupID, s.fix.transport.invites[0].ChatID)
	s.Equal(fmt.Sprintf("invite-%d", testApplicantID), s.fix.transport.invites[0].Name)

	msg, ok := s.fix.transport.lastMessageTo(testApplicantID)
	s.Require().True(ok)
	s.Equal(fmt.Sprintf(msgApprovedWithInvite, s.fix.transport.inviteLink), msg.Text)

	s.Require().Len(s.fix.transport.edits, 1)
	s.Equal("заявка"+markerApproved, s.fix.transport.edits[0].Text)

	s.Require().Len(s.fix.transport.callbacks, 1)
	s.Equal(ackApproved, s.fix.transport.callbacks[0].Text)
}

func (s *ReviewSuite) TestApproveFallsBackWhenInviteFails() {
	s.fix.transport.inviteErr = errors.New("no rights")

	s.fix.router.Dispatch(s.ctx, s.decision(testAdminID, true))

	msg, ok := s.fix.transport.lastMessageTo(testApplicantID)
	s.Require().True(ok)
	s.Equal(msgApprovedManual, msg.Text)

	app, err := s.fix.apps.Get(s.ctx, testApplicantID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, app.Status)
}

func (s *ReviewSuite) TestApproveRetriesAfterRelocation() {
	newChatID := testGroupID - 1
	s.fix.transport.inviteErr = &RelocatedError{NewChatID: newChatID}

	s.fix.router.Dispatch(s.ctx, s.decision(testAdminID, true))

	s.Require().Len(s.fix.transport.invites, 2)
	s.Equal(testGroupID, s.fix.transport.invites[0].ChatID)
	s.Equal(newChatID, s.fix.transport.invites[1].ChatID)

	texts := s.fix.transport.messagesTo(testAdminID)
	s.Contains(texts, fmt.Sprintf(msgGroupRelocated, newChatID))

	msg, _ := s.fix.transport.lastMessageTo(testApplicantID)
	s.Equal(fmt.Sprintf(msgApprovedWithInvite, s.fix.transport.inviteLink), msg.Text)
}

func (s *ReviewSuite) TestReject() {
	s.fix.router.Dispatch(s.ctx, s.decision(testAdminID, false))

	app, err := s.fix.apps.Get(s.ctx, testApplicantID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, app.Status)

	msg, ok := s.fix.transport.lastMessageTo(testApplicantID)
	s.Require().True(ok)
	s.Equal(msgRejectedNotice, msg.Text)

	s.Require().Len(s.fix.transport.edits, 1)
	s.Equal("заявка"+markerRejected, s.fix.transport.edits[0].Text)

	s.Require().Len(s.fix.transport.callbacks, 1)
	s.Equal(ackRejected, s.fix.transport.callbacks[0].Text)
}

func (s *ReviewSuite) TestUnknownApplicantReportsFailure() {
	ev := s.decision(testAdminID, true)
	ev.ApplicantID = 9999

	s.fix.router.Dispatch(s.ctx, ev)

	s.Require().Len(s.fix.transport.callbacks, 1)
	s.Equal(msgGenericFailure, s.fix.transport.callbacks[0].Text)
	s.Empty(s.fix.transport.edits)
}
