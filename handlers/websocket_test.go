package handlers

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pileup-backend/models"
)

type fakeConn struct {
	written []models.WebSocketMessage
	fail    bool
	closed  bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.fail {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v.(models.WebSocketMessage))
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestClientManager_RoutesByType(t *testing.T) {
	hub := NewClientManager(zap.NewNop())
	web, robot := &fakeConn{}, &fakeConn{}
	hub.clients[web] = &Client{Conn: web, ClientType: ClientTypeWeb}
	hub.clients[robot] = &Client{Conn: robot, ClientType: ClientTypeRobot}

	hub.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypePlayEvent})
	hub.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypeMoveCommand})
	hub.handleBroadcast(models.WebSocketMessage{Type: "unknown"})

	assert.Len(t, web.written, 1)
	assert.Equal(t, models.MessageTypePlayEvent, web.written[0].Type)
	assert.Len(t, robot.written, 1)
	assert.Equal(t, models.MessageTypeMoveCommand, robot.written[0].Type)
	assert.Equal(t, map[string]int{"robot": 1, "web": 1}, hub.GetClientCount())
}

func TestClientManager_DropsFailedClients(t *testing.T) {
	hub := NewClientManager(zap.NewNop())
	bad := &fakeConn{fail: true}
	hub.clients[bad] = &Client{Conn: bad, ClientType: ClientTypeWeb}

	hub.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypeRobotPosition})

	assert.True(t, bad.closed)
	assert.Equal(t, 0, hub.GetClientCount()[ClientTypeWeb])
}

func TestClientManager_BroadcastDoesNotBlock(t *testing.T) {
	hub := NewClientManager(zap.NewNop())

	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypePlayEvent})
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}

// overlapConn - WriteJSON 이 겹쳐 호출되면 기록
type overlapConn struct {
	active  int32
	overlap int32
	writes  int32
}

func (o *overlapConn) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&o.active, 1) > 1 {
		atomic.StoreInt32(&o.overlap, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&o.writes, 1)
	atomic.AddInt32(&o.active, -1)
	return nil
}

func (o *overlapConn) Close() error { return nil }

func TestClient_WritesAreSerialized(t *testing.T) {
	hub := NewClientManager(zap.NewNop())
	conn := &overlapConn{}
	client := &Client{Conn: conn, ClientType: ClientTypeWeb}
	hub.clients[conn] = client

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypeRobotPosition})
		}()
		go func() {
			defer wg.Done()
			_ = client.WriteJSON(models.WebSocketMessage{Type: models.MessageTypeSystemInfo})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(&conn.writes))
	assert.Zero(t, atomic.LoadInt32(&conn.overlap))
}

func TestClientManager_RegisterAfterStop(t *testing.T) {
	hub := NewClientManager(zap.NewNop())
	hub.Stop()
	hub.Stop()

	conn := &fakeConn{}
	done := make(chan bool, 1)
	go func() {
		ok := hub.Register(&Client{Conn: conn, ClientType: ClientTypeWeb})
		hub.Unregister(conn)
		done <- ok
	}()

	select {
	case ok := <-done:
		assert.False(t, ok)
		assert.True(t, conn.closed)
	case <-time.After(time.Second):
		require.Fail(t, "Register/Unregister blocked after Stop")
	}
}

func TestClientManager_RegisterWhileRunning(t *testing.T) {
	hub := NewClientManager(zap.NewNop())
	go hub.Start()
	defer hub.Stop()

	conn := &fakeConn{}
	require.True(t, hub.Register(&Client{Conn: conn, ClientType: ClientTypeRobot}))
	assert.Eventually(t, func() bool {
		return hub.GetClientCount()[ClientTypeRobot] == 1
	}, time.Second, 10*time.Millisecond)

	hub.Unregister(conn)
	assert.Eventually(t, func() bool {
		return hub.GetClientCount()[ClientTypeRobot] == 0
	}, time.Second, 10*time.Millisecond)
}
