package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/estatedesk/estate-service/internal/events"
	"github.com/estatedesk/estate-service/internal/mail"
)

// NotificationService sends emails for lifecycle events. Delivery is fire and
// forget: failures are logged and never fail the triggering request.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mail.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender mail.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAgentInvited, n.handleAgentInvited)
	n.dispatcher.Subscribe(events.EventAgentApproved, n.handleAgentApproved)
	n.dispatcher.Subscribe(events.EventAgentSuspended, n.handleAgentSuspended)
	n.dispatcher.Subscribe(events.EventAgentUnsuspended, n.handleAgentUnsuspended)
	n.dispatcher.Subscribe(events.EventPasswordReset, n.handlePasswordReset)
}

func (n *NotificationService) handleAgentInvited(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AgentInvitedPayload)
	if !ok {
		return nil
	}
	body := fmt.Sprintf(
		"You have been invited as an agent.\nAccept your invitation: %s\nTemporary password: %s\n",
		payload.InvitationLink, payload.TempPassword)
	n.send(ctx, payload.Email, "Agent invitation", body)
	return nil
}

func (n *NotificationService) handleAgentApproved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AgentApprovedPayload)
	if !ok || payload.Email == "" {
		return nil
	}
	n.send(ctx, payload.Email, "Account approved", "Your agent account has been approved.\n")
	return nil
}

func (n *NotificationService) handleAgentSuspended(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AgentSuspendedPayload)
	if !ok || payload.Email == "" {
		return nil
	}
	body := fmt.Sprintf(
		"Your agent account has been suspended.\nReason: %s\nSuspension ends: %s\n",
		payload.Reason, payload.EndsAt)
	n.send(ctx, payload.Email, "Account suspended", body)
	return nil
}

func (n *NotificationService) handleAgentUnsuspended(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AgentUnsuspendedPayload)
	if !ok || payload.Email == "" {
		return nil
	}
	n.send(ctx, payload.Email, "Account reinstated", "Your agent account has been reinstated.\n")
	return nil
}

func (n *NotificationService) handlePasswordReset(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetPayload)
	if !ok {
		return nil
	}
	body := fmt.Sprintf("Use this token to reset your password: %s\n", payload.ResetToken)
	n.send(ctx, payload.Email, "Password reset", body)
	return nil
}

func (n *NotificationService) send(ctx context.Context, to, subject, body string) {
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		n.logger.Warn("email delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
	}
}
