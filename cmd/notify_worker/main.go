package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/config"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
	"github.com/oksasatya/interview-tracker/pkg/mailer"
)

const sendTimeout = 15 * time.Second

type outcome int

const (
	ack     outcome = iota
	drop            // nack without requeue
	requeue         // nack and retry later
)

// dryRunSender logs instead of sending; used while MAIL_SEND_ENABLED is off.
type dryRunSender struct {
	logger logrus.FieldLogger
}

func (d dryRunSender) Send(_ context.Context, to, subject, _, _ string) error {
	d.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("mail sending disabled; notification rendered only")
	return nil
}

// process decodes and delivers one queued job and says what to do with the message.
func process(ctx context.Context, s mailer.Sender, logger logrus.FieldLogger, body []byte) outcome {
	var job mailer.NotificationJob
	if err := json.Unmarshal(body, &job); err != nil {
		helpers.LogError(logger, "bad message", err, nil)
		return drop
	}

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	err := mailer.Deliver(c, s, job)
	switch {
	case err == nil:
		return ack
	case errors.Is(err, mailer.ErrBadJob):
		helpers.LogError(logger, "undeliverable job", err, logrus.Fields{"template": job.Template})
		return drop
	default:
		helpers.LogWarn(logger, "send failed; requeueing", err, logrus.Fields{"template": job.Template, "to": job.To})
		return requeue
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	var sender mailer.Sender = dryRunSender{logger: logger}
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			log.Fatal("Mailgun not configured")
		}
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}

	conn, ch, err := helpers.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	tag := fmt.Sprintf("%s-notify-%d", cfg.AppName, os.Getpid())
	msgs, err := ch.Consume(cfg.RabbitMQNotifyQueue, tag, false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			switch process(ctx, sender, logger, msg.Body) {
			case ack:
				_ = msg.Ack(false)
			case drop:
				_ = msg.Nack(false, false)
			case requeue:
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQNotifyQueue, "send_enabled": cfg.MailSendEnabled}).Info("notification worker listening")
	<-stop
	logger.Info("shutting down...")
	if !stopConsuming(ch, tag, done, drainGrace, logger) {
		logger.Warn("in-flight delivery did not finish; it will be redelivered")
	}
}

const drainGrace = 2 * time.Second

type canceler interface {
	Cancel(consumer string, noWait bool) error
}

// stopConsuming cancels the consumer so the broker sends nothing new, then
// waits up to grace for the delivery loop to finish.
func stopConsuming(c canceler, tag string, done <-chan struct{}, grace time.Duration, logger logrus.FieldLogger) bool {
	if err := c.Cancel(tag, false); err != nil {
		logger.WithError(err).Warn("cancel consumer failed")
	}
	select {
	case <-done:
		return true
	case <-time.After(grace):
		return false
	}
}
