package kafkax

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestExtractEventMetaFromHeaders(t *testing.T) {
	msg := kafka.Message{
		Topic: "clinic.bill.created.v1",
		Key:   []byte("42"),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte("evt-123")},
			{Key: "event_type", Value: []byte("clinic.bill.created.v1")},
		},
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "evt-123" {
		t.Fatalf("event id %q, want evt-123", meta.EventID)
	}
	if meta.EventType != "clinic.bill.created.v1" {
		t.Fatalf("event type %q", meta.EventType)
	}
}

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	msg := kafka.Message{
		Topic: "clinic.appointment.scheduled.v1",
		Key:   []byte("7"),
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "7" {
		t.Fatalf("event id %q, want message key", meta.EventID)
	}
	if meta.EventType != "clinic.appointment.scheduled.v1" {
		t.Fatalf("event type %q, want topic", meta.EventType)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, kafka-2:9092 ,,")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("got %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatal("empty input must yield no brokers")
	}
}
