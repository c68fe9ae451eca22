package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/wwwizards/leadflow/internal/entity"
)

// LeadCreatedPayload is the wire form of a persisted lead, published
// after a successful save for downstream consumers (email copies, CRM
// sync). The chat notification does not depend on it.
type LeadCreatedPayload struct {
	MessageID      string `json:"message_id"`
	LeadID         string `json:"lead_id"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	ServiceType    string `json:"service_type"`
	Budget         string `json:"budget"`
	Timeline       string `json:"timeline"`
	CompanyName    string `json:"company_name"`
	ContactName    string `json:"contact_name"`
	ContactPhone   string `json:"contact_phone"`
	ContactEmail   string `json:"contact_email"`
	AdditionalInfo string `json:"additional_info"`
	CreatedAt      string `json:"created_at"`
}

func NewLeadCreatedPayload(lead *entity.Lead) LeadCreatedPayload {
	return LeadCreatedPayload{
		MessageID:      uuid.New().String(),
		LeadID:         lead.ID,
		UserID:         lead.UserID,
		Username:       lead.Username,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		ServiceType:    lead.ServiceType,
		Budget:         lead.Budget,
		Timeline:       lead.Timeline,
		CompanyName:    lead.CompanyName,
		ContactName:    lead.ContactName,
		ContactPhone:   lead.ContactPhone,
		ContactEmail:   lead.ContactEmail,
		AdditionalInfo: lead.AdditionalInfo,
		CreatedAt:      lead.CreatedAt.Format(time.RFC3339),
	}
}

type Producer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *Producer {
	return &Producer{Conn: conn, Ch: ch}
}

func (p *Producer) PublishLeadCreated(ctx context.Context, payload LeadCreatedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal lead.created: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    payload.MessageID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead.created: %w", err)
	}
	return nil
}
