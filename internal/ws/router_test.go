package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_DispatchTypedHandler(t *testing.T) {
	r := NewRouter()

	type greetReq struct {
		Name string `json:"name"`
	}
	Register(r, "greet", func(_ context.Context, _ *ConnContext, req greetReq) (*Envelope, error) {
		return newEnvelope("greeted", map[string]string{"hello": req.Name}), nil
	})

	reply, err := r.dispatch(context.Background(), &ConnContext{ConnID: "c1"},
		Envelope{Event: "greet", Body: json.RawMessage(`{"name":"alice"}`)})
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "greeted", reply.Event)
	assert.JSONEq(t, `{"hello":"alice"}`, string(reply.Body))
}

func TestRouter_UnknownEvent(t *testing.T) {
	r := NewRouter()

	_, err := r.dispatch(context.Background(), &ConnContext{ConnID: "c1"}, Envelope{Event: "nope"})
	assert.EqualError(t, err, "unknown_event")
}

func TestRouter_MalformedBody(t *testing.T) {
	r := NewRouter()

	type req struct {
		N int `json:"n"`
	}
	Register(r, "num", func(_ context.Context, _ *ConnContext, _ req) (*Envelope, error) {
		return nil, nil
	})

	_, err := r.dispatch(context.Background(), &ConnContext{ConnID: "c1"},
		Envelope{Event: "num", Body: json.RawMessage(`{"n":"not-a-number"}`)})
	assert.Error(t, err)
}

func TestRouter_EmptyBodyIsZeroValueRequest(t *testing.T) {
	r := NewRouter()

	var got JoinRoomRequest
	Register(r, "probe", func(_ context.Context, _ *ConnContext, req JoinRoomRequest) (*Envelope, error) {
		got = req
		return nil, nil
	})

	reply, err := r.dispatch(context.Background(), &ConnContext{ConnID: "c1"}, Envelope{Event: "probe"})
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.Zero(t, got)
}

func TestRouter_EmptyEventPanics(t *testing.T) {
	r := NewRouter()
	assert.Panics(t, func() {
		Register(r, "", func(_ context.Context, _ *ConnContext, _ EmptyBody) (*Envelope, error) {
			return nil, nil
		})
	})
}
