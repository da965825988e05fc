package search

import (
	"context"
	"errors"
	"testing"

	"github.com/ukbuild/material-hunter/internal/ai"
	"github.com/ukbuild/material-hunter/internal/pipeline"
)

type fixedClient struct {
	answer ai.Answer
	err    error
}

func (f *fixedClient) SearchMaterials(ctx context.Context, query string) (ai.Answer, error) {
	return f.answer, f.err
}

func newTestService(client ai.Client) *Service {
	return NewService(pipeline.New(pipeline.Config{}), client, nil, nil, nil, Options{})
}

func TestSearchAI(t *testing.T) {
	svc := newTestService(ai.NewMockClient())

	res, err := svc.SearchAI(context.Background(), "50mm PIR insulation board", 5)
	if err != nil {
		t.Fatalf("SearchAI: %v", err)
	}
	if res.Source != SourceAI {
		t.Errorf("Source = %q, want %q", res.Source, SourceAI)
	}
	if len(res.Records) == 0 {
		t.Fatal("got no records from the mock answer")
	}
	for _, rec := range res.Records {
		if rec.Supplier == "" || rec.ProductName == "" {
			t.Errorf("record missing required fields: %+v", rec)
		}
	}
	if len(res.Suppliers) == 0 {
		t.Error("searched suppliers should list the extracted suppliers")
	}
}

func TestSearchAIProviderError(t *testing.T) {
	wantErr := errors.New("provider down")
	svc := newTestService(&fixedClient{err: wantErr})

	_, err := svc.SearchAI(context.Background(), "50mm PIR insulation", 5)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the provider error surfaced", err)
	}
}

func TestSearchAIShortQuery(t *testing.T) {
	svc := newTestService(ai.NewMockClient())

	_, err := svc.SearchAI(context.Background(), "ab", 5)
	if !errors.Is(err, pipeline.ErrQueryTooShort) {
		t.Errorf("err = %v, want ErrQueryTooShort", err)
	}
}

func TestSearchLiveShortQuery(t *testing.T) {
	svc := newTestService(ai.NewMockClient())

	_, err := svc.SearchLive(context.Background(), "ab", 5)
	if !errors.Is(err, pipeline.ErrQueryTooShort) {
		t.Errorf("err = %v, want ErrQueryTooShort", err)
	}
}

func TestDemo(t *testing.T) {
	svc := newTestService(&fixedClient{err: errors.New("real client must not be used")})

	res, err := svc.Demo(context.Background(), "50mm PIR insulation", 3)
	if err != nil {
		t.Fatalf("Demo: %v", err)
	}
	if res.Source != SourceDemo {
		t.Errorf("Source = %q, want %q", res.Source, SourceDemo)
	}
	if len(res.Records) == 0 || len(res.Records) > 3 {
		t.Errorf("got %d records, want between 1 and 3", len(res.Records))
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	svc := newTestService(ai.NewMockClient())

	searches, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if searches != nil {
		t.Errorf("searches = %v, want nil when no store is configured", searches)
	}
}

func TestSitesDefault(t *testing.T) {
	svc := newTestService(ai.NewMockClient())
	if len(svc.Sites()) == 0 {
		t.Error("default supplier sites must be populated")
	}
}
