package usecase

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wwwizards/leadflow/internal/entity"
)

// MessageSender is the single delivery primitive supplied by the chat
// transport. The notifier wraps it with retry and backoff.
type MessageSender interface {
	Send(chatID, text string) error
}

// Notification kinds.
const (
	NotifyKindNewLead        = "new_lead"
	NotifyKindContactRequest = "contact_request"
	NotifyKindSystemAlert    = "system_alert"
)

// Notifier delivers operator alerts with bounded retry. Delivery failure
// is absorbed and reported as a boolean so the conversation that
// triggered it is never affected.
type Notifier struct {
	sender        MessageSender
	managerChatID string
	enabled       bool
	retryAttempts int
	retryDelay    time.Duration
	sleep         func(time.Duration)
}

func NewNotifier(sender MessageSender, managerChatID string, enabled bool, retryAttempts int, retryDelay time.Duration) *Notifier {
	return &Notifier{
		sender:        sender,
		managerChatID: managerChatID,
		enabled:       enabled,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		sleep:         time.Sleep,
	}
}

func (n *Notifier) NotifyNewLead(lead *entity.Lead) bool {
	if !n.enabled {
		log.Println("notifications disabled, skipping new lead notification")
		return true
	}
	return n.deliver(formatNewLeadMessage(lead), NotifyKindNewLead)
}

func (n *Notifier) NotifyContactRequest(ev entity.Event) bool {
	if !n.enabled {
		log.Println("notifications disabled, skipping contact request notification")
		return true
	}
	return n.deliver(formatContactRequestMessage(ev), NotifyKindContactRequest)
}

func (n *Notifier) NotifySystemAlert(alert string) bool {
	if !n.enabled {
		log.Println("notifications disabled, skipping system alert")
		return true
	}
	return n.deliver("System alert\n\n"+alert, NotifyKindSystemAlert)
}

func (n *Notifier) deliver(message, kind string) bool {
	for attempt := 1; attempt <= n.retryAttempts; attempt++ {
		err := n.sender.Send(n.managerChatID, message)
		if err == nil {
			log.Printf("notification sent: %s", kind)
			recordNotification(kind, "sent")
			return true
		}

		log.Printf("failed to send notification (attempt %d/%d): %v", attempt, n.retryAttempts, err)
		if attempt < n.retryAttempts {
			n.sleep(n.retryDelay)
		}
	}

	log.Printf("giving up on notification after %d attempts: %s", n.retryAttempts, kind)
	recordNotification(kind, "failed")
	return false
}

func formatNewLeadMessage(lead *entity.Lead) string {
	var b strings.Builder

	name := lead.FirstName
	if name == "" {
		name = "Unknown"
	}
	if lead.LastName != "" {
		name += " " + lead.LastName
	}
	if lead.Username != "" {
		name += " (@" + lead.Username + ")"
	}

	fmt.Fprintf(&b, "New lead!\n\n")
	fmt.Fprintf(&b, "%s\nID: %d\n", name, lead.UserID)
	fmt.Fprintf(&b, "Company: %s\n", lead.CompanyName)
	fmt.Fprintf(&b, "Phone: %s\n", lead.ContactPhone)
	fmt.Fprintf(&b, "Email: %s\n\n", lead.ContactEmail)
	fmt.Fprintf(&b, "Project:\n")
	fmt.Fprintf(&b, "- Service: %s\n", lead.ServiceType)
	fmt.Fprintf(&b, "- Budget: %s\n", lead.Budget)
	fmt.Fprintf(&b, "- Timeline: %s\n", lead.Timeline)

	if lead.AdditionalInfo != "" {
		fmt.Fprintf(&b, "\nAdditional info:\n%s\n", lead.AdditionalInfo)
	}
	return b.String()
}

func formatContactRequestMessage(ev entity.Event) string {
	name := ev.FirstName
	if name == "" {
		name = "Unknown"
	}
	if ev.LastName != "" {
		name += " " + ev.LastName
	}
	if ev.Username != "" {
		name += " (@" + ev.Username + ")"
	}
	return fmt.Sprintf("Contact request\n\n%s\nID: %d", name, ev.UserID)
}
