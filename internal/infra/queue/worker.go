package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AlertSender receives the decoded lead event; implemented by the SMTP
// sender. The worker is fully decoupled from storage.
type AlertSender interface {
	SendLeadAlert(payload LeadCreatedPayload) error
}

// Worker consumes lead.created events and fans them out to the alert
// sender. Manual acks: a failed delivery is nacked without requeue and
// lands in the DLQ for inspection.
type Worker struct {
	Channel *amqp.Channel
	Sender  AlertSender
}

func NewWorker(ch *amqp.Channel, sender AlertSender) *Worker {
	return &Worker{Channel: ch, Sender: sender}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("failed to register rabbitmq consumer: %s", err)
	}

	log.Printf("lead alert worker waiting on queue %q", queueName)

	for d := range msgs {
		var payload LeadCreatedPayload
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			log.Printf("worker: invalid lead.created JSON: %s", err)
			d.Nack(false, false)
			continue
		}

		if err := w.Sender.SendLeadAlert(payload); err != nil {
			log.Printf("worker: lead alert failed for %s: %s", payload.LeadID, err)
			d.Nack(false, false)
			continue
		}

		log.Printf("worker: lead alert delivered for %s", payload.LeadID)
		d.Ack(false)
	}
}
