// pkg/ctrader/heartbeat_test.go
package ctrader

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Первая же ошибка отправки завершает heartbeat-цикл.
func TestRunHeartbeat_StopsOnSendFailure(t *testing.T) {
	wantErr := errors.New("socket gone")
	calls := 0
	send := func(context.Context) error {
		calls++
		if calls >= 3 {
			return wantErr
		}
		return nil
	}

	quit := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- runHeartbeat(quit, 5*time.Millisecond, send, testLogger(t))
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, wantErr) {
			t.Errorf("err = %v; want %v", err, wantErr)
		}
		if calls != 3 {
			t.Errorf("send calls = %d; want 3", calls)
		}
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop after send failure")
	}
}

func TestRunHeartbeat_StopsOnQuit(t *testing.T) {
	quit := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- runHeartbeat(quit, time.Hour, func(context.Context) error { return nil }, testLogger(t))
	}()
	close(quit)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("err = %v; want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("heartbeat did not stop on quit")
	}
}
