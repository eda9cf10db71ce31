package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := "proposal-123"
	tenantID := "tenant-456"

	before := time.Now().UTC()
	event := NewBaseEvent("calculation.completed", aggregateID, "Calculation", tenantID)
	after := time.Now().UTC()

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}

	if event.EventType() != "calculation.completed" {
		t.Errorf("expected event type %q, got %q", "calculation.completed", event.EventType())
	}

	if event.AggregateID() != aggregateID {
		t.Errorf("expected aggregate ID %v, got %v", aggregateID, event.AggregateID())
	}

	if event.AggregateType() != "Calculation" {
		t.Errorf("expected aggregate type %q, got %q", "Calculation", event.AggregateType())
	}

	if event.TenantID() != tenantID {
		t.Errorf("expected tenant ID %q, got %q", tenantID, event.TenantID())
	}

	if event.OccurredAt().Before(before) || event.OccurredAt().After(after) {
		t.Errorf("expected occurredAt between %v and %v, got %v", before, after, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestBaseEventMarshalsEnvelope(t *testing.T) {
	event := NewBaseEvent("calculation.failed", "proposal-9", "Calculation", "tenant-1")

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}

	if parsed["event_type"] != "calculation.failed" {
		t.Errorf("expected event_type in payload, got %v", parsed["event_type"])
	}
	if parsed["aggregate_id"] != "proposal-9" {
		t.Errorf("expected aggregate_id in payload, got %v", parsed["aggregate_id"])
	}
	if parsed["event_id"] == "" || parsed["event_id"] == nil {
		t.Error("expected event_id in payload")
	}
}
