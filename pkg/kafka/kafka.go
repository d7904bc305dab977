package kafka

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_LOAN_TOPIC" default:"loan-events"`
}

const (
	EventLoanCreated  = "loan_created"
	EventLoanReturned = "loan_returned"
)

// LoanEvent is published for every successful borrow and return.
type LoanEvent struct {
	EventID   string    `json:"eventId"`
	Type      string    `json:"type"`
	LoanID    int64     `json:"loanId"`
	UserID    int64     `json:"userId"`
	BookID    int64     `json:"bookId"`
	DueDate   string    `json:"dueDate,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLoanEvent(eventType string, loanID, userID, bookID int64, dueDate string) LoanEvent {
	return LoanEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		LoanID:    loanID,
		UserID:    userID,
		BookID:    bookID,
		DueDate:   dueDate,
		Timestamp: time.Now().UTC(),
	}
}

func NewProducer(cfg Config) (sarama.AsyncProducer, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.Producer.RequiredAcks = sarama.WaitForLocal
	defaultCfg.Producer.Return.Successes = false

	return sarama.NewAsyncProducer(cfg.Addrs, defaultCfg)
}

type Publisher interface {
	Publish(ev LoanEvent) error
}

type publisher struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewPublisher(producer sarama.AsyncProducer, topic string) *publisher {
	return &publisher{producer: producer, topic: topic}
}

func (p *publisher) Publish(ev LoanEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	p.producer.Input() <- &sarama.ProducerMessage{Topic: p.topic, Value: sarama.StringEncoder(data)}
	return nil
}
