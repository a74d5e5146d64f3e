package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestObserveAPIRequest tests that requests are counted per query and outcome.
func TestObserveAPIRequest(t *testing.T) {
	t.Parallel()

	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("test_query", OutcomeNetwork))
	ObserveAPIRequest("test_query", OutcomeNetwork, 10*time.Millisecond)
	ObserveAPIRequest("test_query", OutcomeNetwork, 20*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("test_query", OutcomeNetwork))
	if after-before != 2 {
		t.Errorf("expected 2 new requests, got %v", after-before)
	}
}

// TestSetCommunity tests the community gauges.
func TestSetCommunity(t *testing.T) {
	t.Parallel()

	SetCommunity("test-community", 3, 2, 350)

	if got := testutil.ToFloat64(CommunityMembers.WithLabelValues("test-community")); got != 3 {
		t.Errorf("expected 3 members, got %v", got)
	}
	if got := testutil.ToFloat64(CommunityChannels.WithLabelValues("test-community")); got != 2 {
		t.Errorf("expected 2 channels, got %v", got)
	}
	if got := testutil.ToFloat64(CommunityCapacity.WithLabelValues("test-community")); got != 350 {
		t.Errorf("expected 350 sats, got %v", got)
	}
}
