package mail

import (
	"log"
	"strings"
	"sync"
)

// ConsoleService logs messages instead of delivering them. It also records
// everything it "sent" so tests can assert on notifications.
type ConsoleService struct {
	from string

	mu   sync.Mutex
	sent []Message
}

var _ Service = (*ConsoleService)(nil)

func NewConsoleService(from string) *ConsoleService {
	return &ConsoleService{from: from}
}

func (svc *ConsoleService) Send(msg Message) error {
	svc.mu.Lock()
	svc.sent = append(svc.sent, msg)
	svc.mu.Unlock()

	log.Printf("MAIL from=%s to=%s subject=%q\n%s",
		svc.from, strings.Join(msg.To, ", "), msg.Subject, msg.Body)
	return nil
}

// Sent returns a copy of every message delivered so far.
func (svc *ConsoleService) Sent() []Message {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Message, len(svc.sent))
	copy(out, svc.sent)
	return out
}
