package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/pkg/api"
)

func (ts *testServer) dial(t *testing.T, accountID, pathAccountID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/accounts/" + pathAccountID + "/socket"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accountID)
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

func sendInput(t *testing.T, conn *websocket.Conn, id, userID string, partition api.SynchronizerType, cursor string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(api.Message{
		Type:   api.MessageTypeSynchronizerInput,
		ID:     id,
		UserID: userID,
		Input:  &api.SynchronizerInput{Type: partition, WorkspaceID: testWorkspace},
		Cursor: cursor,
	}))
}

func readMessage(t *testing.T, conn *websocket.Conn) api.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg api.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestSocketHandler_OutputAndParking(t *testing.T) {
	ts := newTestServer(t)
	conn, _, err := ts.dial(t, "acc1", "acc1")
	require.NoError(t, err)

	sendInput(t, conn, "users-1", ts.owner.ID, api.SynchronizerUsers, "")
	output := readMessage(t, conn)
	assert.Equal(t, api.MessageTypeSynchronizerOutput, output.Type)
	assert.Equal(t, "users-1", output.ID)
	require.Len(t, output.Items, 1)

	var user api.User
	require.NoError(t, json.Unmarshal(output.Items[0].Data, &user))
	assert.Equal(t, ts.owner.ID, user.ID)

	// данных после курсора нет, запрос ждет изменений
	sendInput(t, conn, "users-2", ts.owner.ID, api.SynchronizerUsers, output.Items[0].Cursor)

	created, err := ts.service.CreateUser(context.Background(), "acc2", testWorkspace, "member@example.com", "Member", "member")
	require.NoError(t, err)

	// порядок push и ответа зависит от того, успел ли запрос припарковаться
	received := map[api.MessageType]api.Message{}
	for range 2 {
		msg := readMessage(t, conn)
		received[msg.Type] = msg
	}

	push, ok := received[api.MessageTypeUserCreated]
	require.True(t, ok)
	assert.Equal(t, testWorkspace, push.WorkspaceID)

	output, ok = received[api.MessageTypeSynchronizerOutput]
	require.True(t, ok)
	assert.Equal(t, "users-2", output.ID)
	require.Len(t, output.Items, 1)
	require.NoError(t, json.Unmarshal(output.Items[0].Data, &user))
	assert.Equal(t, created.ID, user.ID)
}

func TestSocketHandler_MutationWakesCollaborations(t *testing.T) {
	ts := newTestServer(t)
	conn, _, err := ts.dial(t, "acc1", "acc1")
	require.NoError(t, err)

	sendInput(t, conn, "collaborations-1", ts.owner.ID, api.SynchronizerCollaborations, "")

	body, err := json.Marshal(api.SyncMutationsRequest{Mutations: []api.Mutation{createSpaceMutation(t, "root1sp")}})
	require.NoError(t, err)
	resp := ts.postMutations(t, "acc1", testWorkspace, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	output := readMessage(t, conn)
	assert.Equal(t, "collaborations-1", output.ID)
	require.Len(t, output.Items, 1)

	var collaboration api.Collaboration
	require.NoError(t, json.Unmarshal(output.Items[0].Data, &collaboration))
	assert.Equal(t, "root1sp", collaboration.NodeID)
	assert.Equal(t, ts.owner.ID, collaboration.CollaboratorID)
}

func TestSocketHandler_IgnoresForeignInputs(t *testing.T) {
	ts := newTestServer(t)
	conn, _, err := ts.dial(t, "acc1", "acc1")
	require.NoError(t, err)

	// чужой пользователь и workspace без членства не получают ответа
	sendInput(t, conn, "foreign-user", "other1us", api.SynchronizerUsers, "")
	require.NoError(t, conn.WriteJSON(api.Message{
		Type:  api.MessageTypeSynchronizerInput,
		ID:    "foreign-workspace",
		Input: &api.SynchronizerInput{Type: api.SynchronizerUsers, WorkspaceID: "ws9ws"},
	}))
	sendInput(t, conn, "own", ts.owner.ID, api.SynchronizerUsers, "")

	output := readMessage(t, conn)
	assert.Equal(t, "own", output.ID)
}

func TestSocketHandler_AccountMismatch(t *testing.T) {
	ts := newTestServer(t)

	_, resp, err := ts.dial(t, "acc1", "acc2")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = ts.dial(t, "", "acc1")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
