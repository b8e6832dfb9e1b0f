package socketio_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/actorgrid/internal/control"
	"github.com/vk/actorgrid/internal/localexecutor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/testutil"
	"github.com/vk/actorgrid/internal/token"
	"github.com/vk/actorgrid/modules/socketio"
	"github.com/zishang520/engine.io/v2/types"
	sio "github.com/zishang520/socket.io/v2/socket"
)

// startTicker serves socket.io in process and emits event with payload to
// every connected client until it disconnects.
func startTicker(t *testing.T, event string, payload any) string {
	t.Helper()
	httpServer := types.NewWebServer(nil)
	io := sio.NewServer(httpServer, nil)
	done := make(chan struct{})

	io.On("connection", func(clients ...any) {
		client := clients[0].(*sio.Socket)
		gone := make(chan struct{})
		var once sync.Once
		client.On("disconnect", func(...any) { once.Do(func() { close(gone) }) })
		go func() {
			tick := time.NewTicker(20 * time.Millisecond)
			defer tick.Stop()
			for {
				select {
				case <-gone:
					return
				case <-done:
					return
				case <-tick.C:
					_ = client.Emit(event, payload)
				}
			}
		}()
	})

	ts := httptest.NewServer(httpServer)
	t.Cleanup(func() {
		close(done)
		io.Close(nil)
		ts.Close()
	})
	return ts.URL + "/socket.io/"
}

func TestListenForwardsEventsToCallable(t *testing.T) {
	url := startTicker(t, "tick", map[string]any{"msg": "hello", "n": 1})

	l := testutil.Named(socketio.NewListen(), "listen")
	o := options.MustFromMap(map[string]any{
		"url":             url,
		"event":           "tick",
		"callable":        "log",
		"count":           2,
		"connect_timeout": "5s",
		"duration":        "10s",
	})
	require.NoError(t, l.Configure(o))
	log := testutil.NewCollector("log")
	callables := testutil.Named(control.NewCallableActors(), "callables")
	require.NoError(t, callables.Add(log))
	f := testutil.Named(control.NewFlow(), "flow")
	require.NoError(t, f.Add(callables))
	require.NoError(t, f.Add(l))

	start := time.Now()
	res := localexecutor.New(f).Run(context.Background())
	require.NoError(t, res.Error())
	assert.Less(t, time.Since(start), 10*time.Second)

	want := token.Container{"msg": "hello", "n": 1}
	assert.Equal(t, []any{want, want}, log.Got())
	assert.False(t, log.Overlapped())
	assert.Nil(t, l.Ref())
}
