package claude

import (
	"context"
	"testing"

	"github.com/quotadeck/quotadeck/internal/core"
)

type fakeSource struct {
	payload []byte
	err     error
}

func (f *fakeSource) QuotaRaw(context.Context, string, string) ([]byte, error) {
	return f.payload, f.err
}

func TestFetchInvertsUtilization(t *testing.T) {
	source := &fakeSource{payload: []byte(`{
		"five_hour": {"utilization": 30},
		"seven_day": {"utilization": 50}
	}`)}
	metrics, err := New(source).Fetch(context.Background(), core.AuthFile{Name: "a.json"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("metrics = %d, want 2", len(metrics))
	}
	if metrics[0].ID != "five_hour" || *metrics[0].Percent != 70 {
		t.Errorf("five_hour = %+v, want remaining 70", metrics[0])
	}
	if metrics[1].ID != "seven_day" || *metrics[1].Percent != 50 {
		t.Errorf("seven_day = %+v, want remaining 50", metrics[1])
	}
}

func TestFetchClampsOverQuota(t *testing.T) {
	source := &fakeSource{payload: []byte(`{"five_hour": {"utilization": 130}, "seven_day": {}}`)}
	metrics, err := New(source).Fetch(context.Background(), core.AuthFile{Name: "a.json"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if *metrics[0].Percent != 0 {
		t.Errorf("over-quota remaining = %v, want 0", *metrics[0].Percent)
	}
	if metrics[1].Percent != nil {
		t.Errorf("missing utilization = %v, want nil", *metrics[1].Percent)
	}
}

func TestFetchRejectsMalformedPayload(t *testing.T) {
	source := &fakeSource{payload: []byte(`[]`)}
	if _, err := New(source).Fetch(context.Background(), core.AuthFile{Name: "a.json"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAdapterIdentity(t *testing.T) {
	a := New(&fakeSource{})
	if a.ID() != "claude" || a.DisplayName() != "Claude" {
		t.Errorf("identity = %s/%s", a.ID(), a.DisplayName())
	}
	if a.MaxSummaryItems() != 0 {
		t.Errorf("MaxSummaryItems = %d, want 0 (bounded windows)", a.MaxSummaryItems())
	}
}
