package usecase

import (
	"context"
	"log"
	"time"

	"github.com/wwwizards/leadflow/internal/entity"
	"github.com/wwwizards/leadflow/internal/infra/queue"
)

// Throttle gates inbound events per user before any state is touched.
type Throttle interface {
	Admit(userID int64) bool
}

// QueueProducerInterface publishes lead events to the optional outbox.
type QueueProducerInterface interface {
	PublishLeadCreated(ctx context.Context, payload queue.LeadCreatedPayload) error
}

// Commands understood by the dispatcher.
const (
	CommandStart   = "/start"
	CommandNew     = "/new"
	CommandCancel  = "/cancel"
	CommandContact = "/contact"
)

// Canned user-facing replies.
const (
	replyThrottled = "Too many requests. Please wait a moment."
	replyCancelled = "Order cancelled.\n\nIf you have questions, you can contact our manager or send /start to begin again."
	replyIdle      = "Send /start to begin a new request."
	replySaved     = "Your request has been sent!\n\nThank you for your interest. Our manager will contact you shortly, usually within 2-4 hours during business hours."
	replySaveError = "Something went wrong while sending your request.\n\nPlease try again, or contact our manager directly with /contact."
	replyContact   = "Our manager has been notified and will reach out to you soon."
)

// Intake wires throttle, conversation engine, lead storage and operator
// notification into one inbound-event entry point. Storage and delivery
// run after the per-user session lock has been released and their
// failures never roll back the already-cleared conversation.
type Intake struct {
	throttle Throttle
	engine   *Engine
	leads    entity.LeadRepository
	notifier *Notifier
	producer QueueProducerInterface // nil when the outbox is not configured
	now      func() time.Time
}

func NewIntake(throttle Throttle, engine *Engine, leads entity.LeadRepository, notifier *Notifier, producer QueueProducerInterface) *Intake {
	return &Intake{
		throttle: throttle,
		engine:   engine,
		leads:    leads,
		notifier: notifier,
		producer: producer,
		now:      time.Now,
	}
}

// HandleEvent processes one normalized inbound event and returns the
// outbound reply. It never returns an error: every failure mode has a
// user-facing reply or is absorbed and logged.
func (i *Intake) HandleEvent(ctx context.Context, ev entity.Event) entity.Reply {
	if !i.throttle.Admit(ev.UserID) {
		log.Printf("user %d is rate limited", ev.UserID)
		recordThrottled()
		return entity.Reply{Text: replyThrottled}
	}

	if ev.Kind == entity.EventCommand {
		return i.handleCommand(ctx, ev)
	}
	return i.handleAnswer(ctx, ev)
}

func (i *Intake) handleCommand(ctx context.Context, ev entity.Event) entity.Reply {
	switch ev.Payload {
	case CommandStart:
		reply, _ := i.engine.Begin(ev.UserID, FlowOrderQuiz)
		return reply
	case CommandNew:
		reply, _ := i.engine.Begin(ev.UserID, FlowNewRequest)
		return reply
	case CommandCancel:
		i.engine.Cancel(ev.UserID)
		return entity.Reply{Text: replyCancelled}
	case CommandContact:
		i.notifier.NotifyContactRequest(ev)
		return entity.Reply{Text: replyContact}
	}
	return entity.Reply{Text: replyIdle}
}

func (i *Intake) handleAnswer(ctx context.Context, ev entity.Event) entity.Reply {
	result, err := i.engine.Submit(ev.UserID, ev.Payload)
	if err != nil {
		if IsValidationError(err) {
			// Same step again; state did not advance.
			reply := result.Reply
			reply.Text = "Please pick one of the options.\n\n" + reply.Text
			return reply
		}
		return entity.Reply{Text: replyIdle}
	}

	if result.Completed == nil {
		return result.Reply
	}
	return i.finish(ctx, ev, result.Completed)
}

// finish persists the completed questionnaire and fans out notifications.
// The session is already gone; a save failure only changes the reply.
func (i *Intake) finish(ctx context.Context, ev entity.Event, done *Completion) entity.Reply {
	lead := BuildLead(ev, done.Answers, i.now())

	res := i.leads.Save(ctx, lead)
	if !res.Success {
		log.Printf("error saving lead for user %d: %s", ev.UserID, res.Message)
		recordLeadSave(done.Flow, "error")
		return entity.Reply{Text: replySaveError, Done: true}
	}
	lead.ID = res.ID
	log.Printf("lead saved: %s (flow %s)", lead.ID, done.Flow)
	recordLeadSave(done.Flow, "ok")

	i.notifier.NotifyNewLead(lead)

	if i.producer != nil {
		payload := queue.NewLeadCreatedPayload(lead)
		if err := i.producer.PublishLeadCreated(ctx, payload); err != nil {
			log.Printf("failed to publish lead.created for %s: %v", lead.ID, err)
		}
	}

	return entity.Reply{Text: replySaved, Done: true}
}
