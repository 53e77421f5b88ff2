package statushandler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"whiteboardgo/internal/http/statushandler"
	"whiteboardgo/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := session.NewRegistry()
	roomID, joinKey, err := reg.CreateRoom("creator")
	require.NoError(t, err)
	_, err = reg.JoinRoom("joiner", roomID, joinKey)
	require.NoError(t, err)

	engine := gin.New()
	statushandler.New(reg).Register(engine)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body statushandler.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "running", body.Status)
	assert.Equal(t, 1, body.Rooms)
	assert.Equal(t, 2, body.Participants)
}
