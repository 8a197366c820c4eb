package helpdesk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method  string
	path    string
	payload map[string]any
}

func recordRequests(t *testing.T, reqs *[]recordedRequest, respond func(n int) string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if len(body) > 0 {
			require.NoError(t, json.Unmarshal(body, &rec.payload))
		}
		*reqs = append(*reqs, rec)
		w.Write([]byte(respond(len(*reqs))))
	}
}

func TestClient_PostComment(t *testing.T) {
	t.Run("public comment carries every visibility flag", func(t *testing.T) {
		var reqs []recordedRequest
		client := newTestClient(t, recordRequests(t, &reqs, func(int) string { return `{}` }))

		err := client.PostComment(context.Background(), 40412, "on my way", true)

		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPut, reqs[0].method)
		assert.Equal(t, "/task/40412", reqs[0].path)
		assert.Equal(t, "on my way", reqs[0].payload["Comment"])
		assert.Equal(t, true, reqs[0].payload["IsPublic"])
		assert.Equal(t, true, reqs[0].payload["IsClientVisible"])
		assert.Equal(t, false, reqs[0].payload["Internal"])
	})

	t.Run("private comment carries only the body", func(t *testing.T) {
		var reqs []recordedRequest
		client := newTestClient(t, recordRequests(t, &reqs, func(int) string { return `{}` }))

		err := client.PostComment(context.Background(), 40412, "internal note", false)

		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, map[string]any{"Comment": "internal note"}, reqs[0].payload)
	})
}

func TestClient_Coordinate(t *testing.T) {
	t.Run("approve with acting coordinator and status force", func(t *testing.T) {
		var reqs []recordedRequest
		client := newTestClient(t, recordRequests(t, &reqs, func(int) string { return `{}` }))

		err := client.Coordinate(context.Background(), 40412, true, CoordinateRequest{
			Comment:         "approved",
			CoordinatorID:   53,
			StatusOnApprove: 45,
		})

		require.NoError(t, err)
		require.Len(t, reqs, 2)

		assert.Equal(t, true, reqs[0].payload["Coordinate"])
		assert.Equal(t, float64(53), reqs[0].payload["CoordinatorId"])
		assert.Equal(t, float64(53), reqs[0].payload["CoordinateForCoordinatorId"])
		assert.Equal(t, "approved", reqs[0].payload["Comment"])

		assert.Equal(t, "/task/40412", reqs[1].path)
		assert.Equal(t, float64(45), reqs[1].payload["StatusId"])
	})

	t.Run("decline never forces a status", func(t *testing.T) {
		var reqs []recordedRequest
		client := newTestClient(t, recordRequests(t, &reqs, func(int) string { return `{}` }))

		err := client.Coordinate(context.Background(), 40412, false, CoordinateRequest{StatusOnApprove: 45})

		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, false, reqs[0].payload["Coordinate"])
	})

	t.Run("failed status force does not fail the approval", func(t *testing.T) {
		var reqs []recordedRequest
		handler := func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			rec := recordedRequest{method: r.Method, path: r.URL.Path}
			if len(body) > 0 {
				require.NoError(t, json.Unmarshal(body, &rec.payload))
			}
			reqs = append(reqs, rec)
			if _, ok := rec.payload["StatusId"]; ok {
				http.Error(w, "status locked", http.StatusConflict)
				return
			}
			w.Write([]byte(`{}`))
		}
		client := newTestClient(t, handler)

		err := client.Coordinate(context.Background(), 40412, true, CoordinateRequest{StatusOnApprove: 45})

		require.NoError(t, err)
		assert.Len(t, reqs, 2)
	})
}

func TestClient_CreateTicket(t *testing.T) {
	var reqs []recordedRequest
	client := newTestClient(t, recordRequests(t, &reqs, func(int) string { return `{"Id": 40500}` }))

	id, err := client.CreateTicket(context.Background(), CreateTicketRequest{
		Name:      "need a new laptop",
		CreatorID: 53,
		ServiceID: 4,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(40500), id)
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].method)
	assert.Equal(t, "/task", reqs[0].path)
	assert.Equal(t, "need a new laptop", reqs[0].payload["Name"])
}
