package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/opsboard/common/middleware"
	"github.com/telhawk-systems/opsboard/internal/models"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:3000/", 10*time.Second)

	assert.Equal(t, "http://localhost:3000", c.BaseURL())
	assert.Equal(t, 10*time.Second, c.client.Timeout)
}

func TestClient_Overview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathOverview, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "req-1", r.Header.Get(middleware.RequestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.WorkflowOverview{
			TotalWorkflowsToday:  120,
			AvgCycleTimeHours:    4.5,
			SLACompliancePercent: 97.2,
			ActiveAnomaliesCount: 3,
		})
	}))
	defer server.Close()

	c := New(server.URL, time.Second)
	ctx := middleware.WithRequestID(context.Background(), "req-1")

	overview, err := c.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120, overview.TotalWorkflowsToday)
	assert.InDelta(t, 4.5, overview.AvgCycleTimeHours, 0.001)
	assert.InDelta(t, 97.2, overview.SLACompliancePercent, 0.001)
	assert.Equal(t, 3, overview.ActiveAnomaliesCount)
}

func TestClient_Anomalies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"two anomalies", `{"anomalies":[{"id":"a1","type":"SLA Breach","severity":"high","timestamp":"2024-01-15T10:00:00Z","description":"late"},{"id":"a2","type":"System Error","severity":"critical","timestamp":"2024-01-15T11:00:00Z","description":"down"}]}`, 2},
		{"missing list", `{}`, 0},
		{"empty list", `{"anomalies":[]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathAnomalies, r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			anomalies, err := New(server.URL, time.Second).Anomalies(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, anomalies)
			assert.Len(t, anomalies, tt.want)
		})
	}
}

func TestClient_Timeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathTimeline, r.URL.Path)
		_, _ = w.Write([]byte(`{"events":[{"timestamp":"2024-01-15T10:00:00Z","type":"workflow_completed","workflowId":"wf-1"}]}`))
	}))
	defer server.Close()

	events, err := New(server.URL, time.Second).Timeline(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "wf-1", events[0].WorkflowID)
	assert.Equal(t, "workflow_completed", events[0].Type)
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).Overview(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "backend unavailable", statusErr.Body)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).Timeline(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(server.URL, 0).Overview(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
