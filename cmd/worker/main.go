// Worker consumes queued notification jobs from Kafka and delivers them via
// Twilio (or mock when Twilio is not configured).
// Set KAFKA_BROKERS, NOTIFY_KAFKA_TOPIC, and KAFKA_GROUP_ID.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"payment-alerts/backend/internal/config"
	"payment-alerts/backend/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	topic := cfg.NotifyKafkaTopic
	if topic == "" {
		topic = "payment-notifications"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "payment-notify-worker"
	}

	var sender notify.Sender
	if cfg.TwilioConfigured() {
		sender = notify.NewTwilioSender(
			cfg.TwilioAccountSID, cfg.TwilioAuthToken,
			cfg.TwilioFromNumber, cfg.TwilioToNumber,
		)
		log.Println("worker: delivering via Twilio")
	} else {
		sender = notify.MockSender{}
		log.Println("worker: Twilio not configured, delivering in mock mode")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", topic, groupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		var job notify.Job
		if err := json.Unmarshal(msg.Value, &job); err != nil {
			log.Printf("worker: bad job payload, skipping: %v", err)
			continue
		}

		sendCtx, sendCancel := context.WithTimeout(ctx, 10*time.Second)
		if _, err := sender.Send(sendCtx, job.Payment, job.CustomMessage); err != nil {
			log.Printf("worker: delivery failed for %s: %v", job.Payment.PaymentID, err)
		} else {
			log.Printf("worker: delivered alert for %s", job.Payment.PaymentID)
		}
		sendCancel()
	}
}
