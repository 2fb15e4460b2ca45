package xmlship

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

type staticSource struct {
	records []Record
	err     error
}

func (s staticSource) Fetch(context.Context, string) ([]Record, error) {
	return s.records, s.err
}

type fakeWriter struct {
	path string
	data []byte
	err  error
}

func (w *fakeWriter) Write(path string, data []byte) error {
	w.path = path
	w.data = data

	return w.err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func okServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	return server, &hits
}

func newTestWorkflow(source Source, endpoint string, opts ...WorkflowOption) *Workflow {
	client := NewClient(
		WithDefaultEndpoint(endpoint),
		WithBackoffBase(time.Millisecond),
	)

	return NewWorkflow(source, NewXMLEncoder(), client, opts...)
}

func TestWorkflowRunDeliversCollection(t *testing.T) {
	server, hits := okServer(t)
	writer := &fakeWriter{}
	source := staticSource{records: sampleRecords()}
	wf := newTestWorkflow(source, server.URL, WithFileWriter(writer), WithOutputDir("/tmp/exports"))

	result := wf.Run(context.Background(), "users", WithSaveToFile())

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.RecordCount != 3 {
		t.Fatalf("expected 3 records, got %d", result.RecordCount)
	}
	want := []string{StepRetrieval, StepConversion, StepFileSave, StepDelivery}
	if !reflect.DeepEqual(result.StepsCompleted, want) {
		t.Fatalf("expected steps %v, got %v", want, result.StepsCompleted)
	}
	if result.OutputPath != "/tmp/exports/users.xml" {
		t.Fatalf("expected deterministic output path, got %q", result.OutputPath)
	}
	if string(writer.data) != result.XMLPayload {
		t.Fatalf("expected persisted document to match the payload")
	}
	if result.Delivery == nil || result.Delivery.StatusCode != http.StatusOK {
		t.Fatalf("expected delivery outcome, got %+v", result.Delivery)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Fatalf("expected a single delivery attempt")
	}
	if result.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if result.ErrorMessage != "" {
		t.Fatalf("expected no error message, got %q", result.ErrorMessage)
	}
}

func TestWorkflowRunEmptySourceShortCircuits(t *testing.T) {
	server, hits := okServer(t)
	wf := newTestWorkflow(staticSource{}, server.URL)

	result := wf.Run(context.Background(), "users")

	if result.Success {
		t.Fatalf("expected failure for empty collection")
	}
	if result.ErrorMessage != "no data found" {
		t.Fatalf("expected no-data message, got %q", result.ErrorMessage)
	}
	if len(result.StepsCompleted) != 0 {
		t.Fatalf("expected no completed steps, got %v", result.StepsCompleted)
	}
	if result.Delivery != nil {
		t.Fatalf("expected no delivery attempt, got %+v", result.Delivery)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected endpoint to stay untouched")
	}
}

func TestWorkflowRunSourceErrorIsSurfaced(t *testing.T) {
	server, _ := okServer(t)
	wf := newTestWorkflow(staticSource{err: errors.New("connection refused")}, server.URL)

	result := wf.Run(context.Background(), "users")

	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.ErrorMessage != "connection refused" {
		t.Fatalf("expected source error to be surfaced, got %q", result.ErrorMessage)
	}
	if len(result.StepsCompleted) != 0 {
		t.Fatalf("expected no completed steps, got %v", result.StepsCompleted)
	}
}

func TestWorkflowRunEncodingFailureIsSurfaced(t *testing.T) {
	server, hits := okServer(t)
	records := []Record{{Fields: []Field{{Name: "bad name", Value: "x"}}}}
	wf := newTestWorkflow(staticSource{records: records}, server.URL)

	result := wf.Run(context.Background(), "users")

	if result.Success {
		t.Fatalf("expected failure")
	}
	want := []string{StepRetrieval}
	if !reflect.DeepEqual(result.StepsCompleted, want) {
		t.Fatalf("expected steps %v, got %v", want, result.StepsCompleted)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected no delivery after encoding failure")
	}
}

func TestWorkflowRunWriterFailureStopsBeforeDelivery(t *testing.T) {
	server, hits := okServer(t)
	writer := &fakeWriter{err: errors.New("disk full")}
	wf := newTestWorkflow(staticSource{records: sampleRecords()}, server.URL, WithFileWriter(writer))

	result := wf.Run(context.Background(), "users", WithSaveToFile())

	if result.Success {
		t.Fatalf("expected failure")
	}
	want := []string{StepRetrieval, StepConversion}
	if !reflect.DeepEqual(result.StepsCompleted, want) {
		t.Fatalf("expected steps %v, got %v", want, result.StepsCompleted)
	}
	if result.ErrorMessage != "disk full" {
		t.Fatalf("expected writer error to be surfaced, got %q", result.ErrorMessage)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected no delivery after persistence failure")
	}
}

func TestWorkflowRunDeliveryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	wf := newTestWorkflow(staticSource{records: sampleRecords()}, server.URL)
	result := wf.Run(context.Background(), "users")

	if result.Success {
		t.Fatalf("expected failure")
	}
	want := []string{StepRetrieval, StepConversion}
	if !reflect.DeepEqual(result.StepsCompleted, want) {
		t.Fatalf("expected steps %v, got %v", want, result.StepsCompleted)
	}
	if result.Delivery == nil || result.Delivery.StatusCode != http.StatusNotFound {
		t.Fatalf("expected delivery outcome with status 404, got %+v", result.Delivery)
	}
	if result.ErrorMessage != "delivery failed with status 404" {
		t.Fatalf("unexpected error message %q", result.ErrorMessage)
	}
}

func TestWorkflowRunWithRetryRecovers(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wf := newTestWorkflow(staticSource{records: sampleRecords()}, server.URL)
	result := wf.RunWithRetry(context.Background(), "users", 3)

	if !result.Success {
		t.Fatalf("expected retried delivery to succeed, got %+v", result)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits)
	}
	want := []string{StepRetrieval, StepConversion, StepDelivery}
	if !reflect.DeepEqual(result.StepsCompleted, want) {
		t.Fatalf("expected steps %v, got %v", want, result.StepsCompleted)
	}
}

func TestWorkflowRunWithRetrySharesPrefixShortCircuit(t *testing.T) {
	server, hits := okServer(t)
	wf := newTestWorkflow(staticSource{}, server.URL)

	result := wf.RunWithRetry(context.Background(), "users", 3)

	if result.Success {
		t.Fatalf("expected failure for empty collection")
	}
	if result.ErrorMessage != "no data found" {
		t.Fatalf("expected no-data message, got %q", result.ErrorMessage)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Fatalf("expected no delivery attempts, got %d", *hits)
	}
}

func TestWorkflowRunCustomEndpointOverridesDefault(t *testing.T) {
	wrong, wrongHits := okServer(t)
	right, rightHits := okServer(t)

	wf := newTestWorkflow(staticSource{records: sampleRecords()}, wrong.URL)
	result := wf.Run(context.Background(), "users", WithEndpoint(right.URL))

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if atomic.LoadInt32(wrongHits) != 0 {
		t.Fatalf("expected default endpoint to be skipped")
	}
	if atomic.LoadInt32(rightHits) != 1 {
		t.Fatalf("expected custom endpoint to receive the delivery")
	}
}

func TestWorkflowRunRecoversPanics(t *testing.T) {
	server, _ := okServer(t)
	source := SourceFunc(func(context.Context, string) ([]Record, error) {
		panic("source exploded")
	})
	wf := newTestWorkflow(source, server.URL)

	result := wf.Run(context.Background(), "users")

	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.ErrorMessage != "source exploded" {
		t.Fatalf("expected panic text as error message, got %q", result.ErrorMessage)
	}
}

func TestWorkflowRunTimestampComesFromClock(t *testing.T) {
	server, _ := okServer(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	wf := newTestWorkflow(staticSource{records: sampleRecords()}, server.URL, WithClock(fixedClock{now: now}))

	result := wf.Run(context.Background(), "users")

	if !result.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %s, got %s", now, result.Timestamp)
	}
}

func TestNewWorkflowPanicsOnNilCollaborators(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on nil source")
		}
	}()

	NewWorkflow(nil, NewXMLEncoder(), NewClient())
}
