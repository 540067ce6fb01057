package openai

import (
	"errors"
	"testing"

	"github.com/onshop/prodvec/internal/domain"
)

func TestParseRecommendations(t *testing.T) {
	out := `[{"product_id": 3, "attributes": {"reason": "cheap protein"}}, {"product_id": 1, "attributes": {}}]`

	recs, err := parseRecommendations(out)
	if err != nil {
		t.Fatalf("parseRecommendations: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].ProductID != 3 || recs[1].ProductID != 1 {
		t.Errorf("model order not preserved: %+v", recs)
	}
	if recs[0].Attributes["reason"] != "cheap protein" {
		t.Errorf("unexpected attributes: %+v", recs[0].Attributes)
	}
}

func TestParseRecommendations_MarkdownFence(t *testing.T) {
	out := "```json\n[{\"product_id\": 5, \"attributes\": {}}]\n```"

	recs, err := parseRecommendations(out)
	if err != nil {
		t.Fatalf("parseRecommendations: %v", err)
	}
	if len(recs) != 1 || recs[0].ProductID != 5 {
		t.Errorf("unexpected recommendations: %+v", recs)
	}
}

func TestParseRecommendations_MissingID(t *testing.T) {
	out := `[{"attributes": {"reason": "nope"}}]`

	if _, err := parseRecommendations(out); err == nil {
		t.Fatal("expected error for element without product_id")
	}
}

func TestParseRecommendations_NotJSON(t *testing.T) {
	if _, err := parseRecommendations("sorry, I cannot help with that"); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestParseAPIError_WrapsSentinel(t *testing.T) {
	err := parseAPIError(errors.New("connection refused"), domain.ErrChatProviderError)
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected ErrChatProviderError, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail": "quota exhausted"}`)); got != "quota exhausted" {
		t.Errorf("extractDetail = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("extractDetail on garbage = %q, want empty", got)
	}
}
