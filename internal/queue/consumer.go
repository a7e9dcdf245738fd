package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartConsumer connects to RabbitMQ and appends every ledger event to
// logs/ledger-audit.log, one line per message. It runs a reconnect
// loop with exponential backoff and never returns under normal
// operation; malformed messages are rejected without requeue so the
// service keeps running. An empty URL disables the consumer.
func StartConsumer(url string) {
	if url == "" {
		return
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logrus.WithError(err).Warnf("ledger-consumer: dial failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			logrus.WithError(err).Warn("ledger-consumer: consume loop ended; reconnecting")
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(LedgerQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(LedgerQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := appendAudit(d.Body); err != nil {
			logrus.WithError(err).Warn("ledger-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

// appendAudit writes one formatted line per event to the audit log.
func appendAudit(body []byte) error {
	var evt Envelope
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	var line string
	switch {
	case evt.TicketMinted != nil:
		m := evt.TicketMinted
		line = fmt.Sprintf("%s minted event=%d %q buyer=%d tickets=%v paid=%d",
			evt.OccurredAt, m.EventID, m.EventName, m.BuyerID, m.TicketIDs, m.PaidUnits)
	case evt.TicketValidated != nil:
		v := evt.TicketValidated
		line = fmt.Sprintf("%s validated ticket=%d event=%d owner=%d",
			evt.OccurredAt, v.TicketID, v.EventID, v.OwnerID)
	case evt.ListingSold != nil:
		s := evt.ListingSold
		line = fmt.Sprintf("%s sold ticket=%d seller=%d buyer=%d price=%d",
			evt.OccurredAt, s.TicketID, s.SellerID, s.BuyerID, s.PriceUnits)
	default:
		return fmt.Errorf("unknown event type %q", evt.Type)
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "ledger-audit.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}
