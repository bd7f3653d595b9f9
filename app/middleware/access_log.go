package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// LogEntry is one access log record shipped to Kafka.
type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration"`
	Service    string    `json:"service"`
}

// MessageWriter is the part of *kafka.Writer the access log needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a writer publishing to topic on the given brokers.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
	}
}

// AccessLog publishes a LogEntry for every request once the response is written.
// Publishing happens off the request goroutine and never affects the response.
func AccessLog(service string, kw MessageWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := NewResponseLogger(w)
			next.ServeHTTP(lw, r)

			entry := LogEntry{
				Timestamp:  time.Now(),
				IP:         getClientIP(r, true),
				StatusCode: lw.Status(),
				RequestID:  GetRequestID(r.Context()),
				Method:     r.Method,
				Path:       r.URL.Path,
				Duration:   time.Since(start).Seconds(),
				Service:    service,
			}

			go func() {
				jsonEntry, err := json.Marshal(entry)
				if err != nil {
					log.Errorf("[AccessLog] failed to marshal log entry for request %s", entry.RequestID)
					return
				}
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := kw.WriteMessages(ctx, kafka.Message{Value: jsonEntry}); err != nil {
					log.Errorf("[AccessLog] failed to write log to Kafka: %v", err)
					return
				}
				log.Debugf("[AccessLog] log entry sent to Kafka request_id:%s", entry.RequestID)
			}()
		})
	}
}
