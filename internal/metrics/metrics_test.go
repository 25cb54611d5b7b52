package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersWithoutPanic(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestRecordChat(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordChat("responded", 120*time.Millisecond)
	m.RecordChat("responded", 80*time.Millisecond)
	m.RecordChat("rate_limited", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("responded")); got != 2 {
		t.Errorf("responded count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ChatRequestsTotal.WithLabelValues("rate_limited")); got != 1 {
		t.Errorf("rate_limited count = %v, want 1", got)
	}
}

func TestRecordToolDispatch(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordToolDispatch("syllabus-lookup", "success", 50*time.Millisecond)
	m.RecordToolDispatch("syllabus-lookup", "not_found", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.ToolDispatchTotal.WithLabelValues("syllabus-lookup", "success")); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ToolDispatchTotal.WithLabelValues("syllabus-lookup", "not_found")); got != 1 {
		t.Errorf("not_found count = %v, want 1", got)
	}
}

func TestStoredDocumentsGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.SetStoredDocuments(3)
	if got := testutil.ToFloat64(m.StoredDocuments); got != 3 {
		t.Errorf("gauge = %v, want 3", got)
	}
	m.SetStoredDocuments(0)
	if got := testutil.ToFloat64(m.StoredDocuments); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}

func TestRecordLLMCall(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordLLMCall("groq", "quota", time.Second)
	if got := testutil.ToFloat64(m.LLMCallsTotal.WithLabelValues("groq", "quota")); got != 1 {
		t.Errorf("quota count = %v, want 1", got)
	}
}
