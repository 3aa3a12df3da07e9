package locate

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sokoni-market/sokoni-cli/internal/testutil"
)

func TestIPProvider_Success(t *testing.T) {
	ms := testutil.NewJSONServer(testutil.SampleIPLocationResponse)
	defer ms.Close()

	p := NewIPProvider(ms.URL, nil)

	pos, err := p.CurrentPosition(context.Background(), DefaultOptions())
	testutil.AssertNil(t, err)
	testutil.AssertFloatEqual(t, pos.Coordinate.Lat, -6.2, 1e-9)
	testutil.AssertFloatEqual(t, pos.Coordinate.Lng, 35.75, 1e-9)
	testutil.AssertTrue(t, pos.Accuracy > 0)
	testutil.AssertFalse(t, pos.Timestamp.IsZero())
}

func TestIPProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   FailureReason
	}{
		{"forbidden", http.StatusForbidden, `{}`, PermissionDenied},
		{"unauthorized", http.StatusUnauthorized, `{}`, PermissionDenied},
		{"rate limited", http.StatusTooManyRequests, `{}`, PositionUnavailable},
		{"status fail", http.StatusOK, testutil.SampleIPLocationFailure, PositionUnavailable},
		{"malformed", http.StatusOK, `<html>`, PositionUnavailable},
		{"missing coordinate", http.StatusOK, `{"status":"success","lat":null,"lon":35}`, PositionUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			defer ms.Close()

			_, err := NewIPProvider(ms.URL, nil).CurrentPosition(context.Background(), DefaultOptions())
			testutil.AssertError(t, err)
			testutil.AssertEqual(t, Classify(err), tt.want)
		})
	}
}

func TestIPProvider_ThroughAcquirer(t *testing.T) {
	ms := testutil.NewJSONServer(testutil.SampleIPLocationResponse)
	defer ms.Close()

	a := New(NewIPProvider(ms.URL, nil))
	r := a.Acquire(context.Background(), Options{Timeout: 5 * time.Second, EnableHighAccuracy: true})

	testutil.AssertTrue(t, r.OK())
	testutil.AssertEqual(t, r.Coordinate.String(), "-6.2,35.75")
}

func TestIPProvider_SlowLookupTimesOut(t *testing.T) {
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	defer ms.Close()

	a := New(NewIPProvider(ms.URL, nil))
	r := a.Acquire(context.Background(), Options{Timeout: 30 * time.Millisecond})

	testutil.AssertEqual(t, r.Reason, Timeout)
}
