// Package notification delivers routing notifications over Telegram with
// an SMTP copy to the admin. It implements the routing engine's Notifier
// contract.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/logger"
)

// MessageSender is the outbound chat channel, satisfied by the telegram
// client.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID string, text string) error
}

// MailSender is the admin email copy channel.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier fans routing events out to the admin chat, consultant chats and
// the admin mailbox.
type Notifier struct {
	chat        MessageSender
	mail        MailSender
	adminChatID string
	adminEmail  string
	log         *logger.Logger
}

// New creates the notifier. Either channel may be nil.
func New(chat MessageSender, mail MailSender, adminChatID, adminEmail string, log *logger.Logger) *Notifier {
	return &Notifier{
		chat:        chat,
		mail:        mail,
		adminChatID: adminChatID,
		adminEmail:  adminEmail,
		log:         log,
	}
}

// NotifyAdminNewLead announces a routed lead and its destination store.
func (n *Notifier) NotifyAdminNewLead(ctx context.Context, lead domain.Lead, destinationLabel string) error {
	text := fmt.Sprintf(
		"New lead %s\nName: %s\nPhone: %s\nServices: %s\nRegions: %s\nSaved in: %s",
		lead.ID, lead.Name, lead.Phone, lead.InterestServices, lead.InterestRegions, destinationLabel,
	)
	return n.toAdmin(ctx, "New lead "+lead.ID, text)
}

// NotifyAdminClosed announces a lead reaching a terminal status.
func (n *Notifier) NotifyAdminClosed(ctx context.Context, lead domain.Lead) error {
	text := fmt.Sprintf(
		"Lead %s marked %s\nName: %s\nPhone: %s",
		lead.ID, string(lead.Status), lead.Name, lead.Phone,
	)
	return n.toAdmin(ctx, "Lead closed "+lead.ID, text)
}

// NotifyConsultantClosed tells the assigned consultant about a close-out.
// Delivery is gated by the consultant's notify_on_close flag and requires a
// chat id.
func (n *Notifier) NotifyConsultantClosed(ctx context.Context, lead domain.Lead, consultant domain.ConsultantProfile) error {
	if !consultant.NotifyOnClose {
		return nil
	}
	if consultant.TelegramChatID == "" {
		n.log.Info("consultant close notification skipped, no chat id",
			"consultant_id", consultant.ID,
			"lead_id", lead.ID,
		)
		return nil
	}

	text := fmt.Sprintf(
		"Lead %s in your list was marked %s.\nName: %s",
		lead.ID, string(lead.Status), lead.Name,
	)
	return n.sendChat(ctx, consultant.TelegramChatID, text)
}

// NotifyConsultantDeletion warns a consultant that a closed lead vanished
// from their store, with a copy to the admin.
func (n *Notifier) NotifyConsultantDeletion(ctx context.Context, consultant domain.ConsultantProfile, leadID, storeLabel string) error {
	text := fmt.Sprintf(
		"Closed lead %s was removed from %s. Closed leads must stay on record until bookkeeping completes.",
		leadID, storeLabel,
	)

	var errs []error
	if consultant.TelegramChatID != "" {
		if err := n.sendChat(ctx, consultant.TelegramChatID, text); err != nil {
			errs = append(errs, err)
		}
	}
	adminText := fmt.Sprintf("%s (consultant: %s)", text, consultant.ContactName)
	if err := n.toAdmin(ctx, "Closed lead removed "+leadID, adminText); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (n *Notifier) toAdmin(ctx context.Context, subject, text string) error {
	var errs []error
	if n.adminChatID != "" {
		if err := n.sendChat(ctx, n.adminChatID, text); err != nil {
			errs = append(errs, err)
		}
	}
	if n.mail != nil && n.adminEmail != "" {
		if err := n.mail.Send(ctx, n.adminEmail, subject, text); err != nil {
			errs = append(errs, fmt.Errorf("admin email copy: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) sendChat(ctx context.Context, chatID, text string) error {
	if n.chat == nil {
		return nil
	}
	if err := n.chat.SendMessage(ctx, chatID, strings.TrimSpace(text)); err != nil {
		return fmt.Errorf("send chat message: %w", err)
	}
	return nil
}
