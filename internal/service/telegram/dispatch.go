package telegram

import (
	"context"
	"fmt"

	"SignalDesk/pkg/queue"
)

const dispatchMessageType = "telegram.dispatch"

// DispatchPayload is one queued message delivery.
type DispatchPayload struct {
	SignalID string `json:"signal_id"`
	Text     string `json:"text"`
}

// QueuedNotifier enqueues deliveries instead of calling the Bot API inline,
// so a slow or flapping Telegram never stalls the refresh loop.
type QueuedNotifier struct {
	q queue.QueueService
}

func NewQueuedNotifier(q queue.QueueService) *QueuedNotifier {
	return &QueuedNotifier{q: q}
}

func (n *QueuedNotifier) Send(ctx context.Context, signalID, text string) error {
	return n.q.PublishMessage(ctx, dispatchMessageType, DispatchPayload{SignalID: signalID, Text: text})
}

// DispatchJob drains queued deliveries through the sender.
type DispatchJob struct {
	sender *Sender
}

func NewDispatchJob(sender *Sender) *DispatchJob {
	return &DispatchJob{sender: sender}
}

func (j *DispatchJob) Name() string { return "telegram-dispatch" }

func (j *DispatchJob) Type() string { return dispatchMessageType }

func (j *DispatchJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[DispatchPayload](payload)
	if err != nil {
		return fmt.Errorf("telegram dispatch payload: %w", err)
	}
	return j.sender.Send(ctx, p.SignalID, p.Text)
}
