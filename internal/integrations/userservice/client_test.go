package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

func TestClient_GetClientName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/internal/users/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"first_name":"Анна","last_name":"Петрова","username":"anna"}`))
	})
	mux.HandleFunc("/internal/users/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"username":"ivan"}`))
	})
	mux.HandleFunc("/internal/users/3", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, time.Second, logger.NewNop())
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  int64
		want    string
		wantErr error
	}{
		{name: "full name", userID: 1, want: "Анна Петрова"},
		{name: "username fallback", userID: 2, want: "ivan"},
		{name: "service degraded", userID: 3, wantErr: ErrServiceDegraded},
		{name: "not found", userID: 4, wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.GetClientName(ctx, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, logger.NewNop())

	_, err := client.GetClientName(context.Background(), 1)

	assert.ErrorIs(t, err, ErrServiceDegraded)
}
