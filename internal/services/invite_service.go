package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "hogar/internal/errors"
	"hogar/internal/invitecode"
	"hogar/internal/logger"
	"hogar/internal/metrics"
	"hogar/internal/models"
)

const (
	defaultInviteHours   = 48
	defaultInviteMaxUses = 10
	maxInviteHours       = 720
	maxInviteUses        = 999
)

// inviteService issues invite codes and runs the join-request workflow.
type inviteService struct {
	db       *gorm.DB
	members  MembershipServicer
	notifier Notifier
	pepper   string
	now      func() time.Time
}

// NewInviteService creates a new InviteServicer. pepper is mixed into every
// code hash; changing it invalidates all outstanding codes.
func NewInviteService(db *gorm.DB, members MembershipServicer, notifier Notifier, pepper string) InviteServicer {
	return &inviteService{
		db:       db,
		members:  members,
		notifier: notifier,
		pepper:   pepper,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateInvite issues a new code. The plaintext is only in the return value.
func (s *inviteService) CreateInvite(userID, householdID string, in InviteInput) (*CreatedInvite, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}

	hours, maxUses, requireApproval := defaultInviteHours, defaultInviteMaxUses, true
	if in.ExpiresInHours != nil {
		hours = *in.ExpiresInHours
	}
	if in.MaxUses != nil {
		maxUses = *in.MaxUses
	}
	if in.RequireApproval != nil {
		requireApproval = *in.RequireApproval
	}
	if hours < 1 || hours > maxInviteHours {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expires_in_hours must be between 1 and 720")
	}
	if maxUses < 1 || maxUses > maxInviteUses {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "max_uses must be between 1 and 999")
	}

	code, err := invitecode.Generate()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	invite := &models.Invite{
		HouseholdID:     householdID,
		CodeHash:        invitecode.Hash(code, s.pepper),
		ExpiresAt:       s.now().Add(time.Duration(hours) * time.Hour),
		MaxUses:         maxUses,
		RequireApproval: requireApproval,
		CreatedBy:       userID,
	}
	if err := s.db.Create(invite).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &CreatedInvite{Invite: invite, Code: code}, nil
}

// ListInvites returns all invites of a household, newest first.
func (s *inviteService) ListInvites(userID, householdID string) ([]models.Invite, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}

	var invites []models.Invite
	if err := s.db.Where("household_id = ?", householdID).Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invites, nil
}

// RevokeInvite stamps revoked_at. Revoking twice keeps the first stamp.
func (s *inviteService) RevokeInvite(userID, householdID, inviteID string) (*models.Invite, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}

	var invite models.Invite
	if err := s.db.Where("id = ? AND household_id = ?", inviteID, householdID).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInviteNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if invite.RevokedAt != nil {
		return &invite, nil
	}

	now := s.now()
	if err := s.db.Model(&invite).Update("revoked_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	invite.RevokedAt = &now
	return &invite, nil
}

// JoinByCode redeems a code for userID.
//
// Existing members get APPROVED without touching the invite. Invites that
// need approval leave a PENDING request and notify the admins; uses only
// grow when membership is actually granted.
func (s *inviteService) JoinByCode(userID, code string) (*JoinResult, error) {
	normalized := invitecode.Normalize(code)
	if normalized == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "code is required")
	}

	var invite models.Invite
	err := s.db.Where("code_hash = ? AND revoked_at IS NULL AND expires_at > ?",
		invitecode.Hash(normalized, s.pepper), s.now()).
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInviteInvalid
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing, err := s.members.GetMembership(userID, invite.HouseholdID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.IdempotentNoops.WithLabelValues(metrics.OpRejoin).Inc()
		metrics.InvitesRedeemed.WithLabelValues(string(models.JoinRequestApproved)).Inc()
		return &JoinResult{Status: models.JoinRequestApproved, HouseholdID: invite.HouseholdID, AlreadyMember: true}, nil
	}

	if invite.Uses >= invite.MaxUses {
		return nil, apperrors.ErrInviteLimitReached
	}

	if invite.RequireApproval {
		return s.requestApproval(userID, &invite)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertMember(tx, invite.HouseholdID, userID, s.now()); err != nil {
			return err
		}
		return consumeInviteUse(tx, invite.ID)
	})
	if err != nil {
		return nil, wrapInternal(err)
	}

	metrics.InvitesRedeemed.WithLabelValues(string(models.JoinRequestApproved)).Inc()
	return &JoinResult{Status: models.JoinRequestApproved, HouseholdID: invite.HouseholdID}, nil
}

// requestApproval reuses the user's PENDING request or files a new one.
func (s *inviteService) requestApproval(userID string, invite *models.Invite) (*JoinResult, error) {
	var req models.JoinRequest
	err := s.db.Where("household_id = ? AND user_id = ? AND status = ?",
		invite.HouseholdID, userID, models.JoinRequestPending).First(&req).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		req = models.JoinRequest{
			HouseholdID: invite.HouseholdID,
			UserID:      userID,
			InviteID:    invite.ID,
			Status:      models.JoinRequestPending,
		}
		if err := s.db.Create(&req).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.notifier.NotifyNewJoinRequest(invite.HouseholdID, userID); err != nil {
		metrics.NotificationFailures.WithLabelValues("join_request_new").Inc()
		logger.Get().Errorw("failed to notify admins of join request",
			"error", err,
			"household_id", invite.HouseholdID,
			"user_id", userID,
		)
	}

	metrics.InvitesRedeemed.WithLabelValues(string(models.JoinRequestPending)).Inc()
	return &JoinResult{Status: models.JoinRequestPending, HouseholdID: invite.HouseholdID, JoinRequestID: req.ID}, nil
}

// ListJoinRequests returns the household's requests in status, newest first.
func (s *inviteService) ListJoinRequests(userID, householdID string, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.JoinRequestPending
	}

	var requests []models.JoinRequest
	if err := s.db.Preload("User").
		Where("household_id = ? AND status = ?", householdID, status).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return requests, nil
}

// DecideJoinRequest approves or rejects a PENDING request. Approval grants
// membership and consumes one use of the originating invite in the same
// transaction. The requester is notified either way.
func (s *inviteService) DecideJoinRequest(userID, householdID, requestID string, decision models.JoinRequestStatus) (*models.JoinRequest, error) {
	if _, err := s.members.AssertAdmin(userID, householdID); err != nil {
		return nil, err
	}
	decision = models.JoinRequestStatus(strings.ToUpper(string(decision)))
	if decision != models.JoinRequestApproved && decision != models.JoinRequestRejected {
		return nil, apperrors.ErrInvalidJoinDecision
	}

	var req models.JoinRequest
	if err := s.db.Where("id = ? AND household_id = ?", requestID, householdID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrJoinRequestNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if req.Status != models.JoinRequestPending {
		return nil, apperrors.ErrJoinRequestDecided
	}

	now := s.now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JoinRequest{}).
			Where("id = ? AND status = ?", req.ID, models.JoinRequestPending).
			Updates(map[string]interface{}{
				"status":     decision,
				"decided_at": now,
				"decided_by": userID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrJoinRequestDecided
		}
		if decision == models.JoinRequestRejected {
			return nil
		}
		if err := upsertMember(tx, householdID, req.UserID, now); err != nil {
			return err
		}
		return consumeInviteUse(tx, req.InviteID)
	})
	if err != nil {
		return nil, wrapInternal(err)
	}

	req.Status = decision
	req.DecidedAt = &now
	req.DecidedBy = &userID
	metrics.JoinDecisions.WithLabelValues(string(decision)).Inc()

	if err := s.notifier.NotifyJoinRequestDecision(householdID, req.UserID, decision); err != nil {
		metrics.NotificationFailures.WithLabelValues("join_request_decision").Inc()
		logger.Get().Errorw("failed to notify requester of decision",
			"error", err,
			"household_id", householdID,
			"request_id", req.ID,
		)
	}
	return &req, nil
}

// upsertMember adds userID as MEMBER unless already present.
func upsertMember(tx *gorm.DB, householdID, userID string, joinedAt time.Time) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.HouseholdMember{
		HouseholdID: householdID,
		UserID:      userID,
		Role:        models.RoleMember,
		JoinedAt:    joinedAt,
	}).Error
}

// consumeInviteUse increments uses only while it is below max_uses, so
// concurrent redemptions can never push it past the cap.
func consumeInviteUse(tx *gorm.DB, inviteID string) error {
	res := tx.Model(&models.Invite{}).
		Where("id = ? AND uses < max_uses", inviteID).
		Update("uses", gorm.Expr("uses + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrInviteLimitReached
	}
	return nil
}

// wrapInternal passes AppErrors through and wraps anything else.
func wrapInternal(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
