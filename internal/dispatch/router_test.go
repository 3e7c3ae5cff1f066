package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "debug", DevMode: true})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// fakeProducer копит опубликованные сообщения в памяти.
type fakeProducer struct {
	mu       sync.Mutex
	messages []published
	err      error
}

type published struct {
	topic string
	key   string
	value []byte
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, key: string(key), value: value})
	return nil
}

func (f *fakeProducer) Ping(context.Context) error { return nil }
func (f *fakeProducer) Close() error               { return nil }

func TestRouter_MatchByClientMsgID(t *testing.T) {
	r := NewRouter(time.Second, testLogger(t))

	p := r.Track("msg-1", openapi.PayloadTypeApplicationAuthRes)
	r.HandleFrame(context.Background(), ctrader.Frame{
		ClientMsgID: "msg-1",
		PayloadType: openapi.PayloadTypeApplicationAuthRes,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	frame, err := p.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if frame.PayloadType != openapi.PayloadTypeApplicationAuthRes {
		t.Errorf("PayloadType = %d", frame.PayloadType)
	}
}

// JSON-ответы доставляются строго своему запросу по clientMsgId, даже
// когда два однотипных запроса в полёте и ответы приходят не по порядку.
func TestRouter_SameTypeInFlightOutOfOrder(t *testing.T) {
	r := NewRouter(time.Second, testLogger(t))

	first := r.Track("msg-1", openapi.PayloadTypeTraderRes)
	second := r.Track("msg-2", openapi.PayloadTypeTraderRes)

	r.HandleFrame(context.Background(), ctrader.Frame{
		ClientMsgID: "msg-2",
		PayloadType: openapi.PayloadTypeTraderRes,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	frame, err := second.Wait(ctx)
	if err != nil {
		t.Fatalf("second.Wait: %v", err)
	}
	if frame.ClientMsgID != "msg-2" {
		t.Errorf("second got ClientMsgID %q; want msg-2", frame.ClientMsgID)
	}

	// Первый всё ещё ждёт свой ответ.
	shortCtx, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	if _, err := first.Wait(shortCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("first.Wait err = %v; want deadline exceeded", err)
	}

	r.HandleFrame(context.Background(), ctrader.Frame{
		ClientMsgID: "msg-1",
		PayloadType: openapi.PayloadTypeTraderRes,
	})
	frame, err = first.Wait(ctx)
	if err != nil {
		t.Fatalf("first.Wait: %v", err)
	}
	if frame.ClientMsgID != "msg-1" {
		t.Errorf("first got ClientMsgID %q; want msg-1", frame.ClientMsgID)
	}
}

// Фрейм с незнакомым clientMsgId не забирает ожидающий запрос по типу.
func TestRouter_UnknownClientMsgIDDoesNotSteal(t *testing.T) {
	r := NewRouter(time.Second, testLogger(t))
	p := r.Track("msg-1", openapi.PayloadTypeTraderRes)

	r.HandleFrame(context.Background(), ctrader.Frame{
		ClientMsgID: "someone-else",
		PayloadType: openapi.PayloadTypeTraderRes,
	})

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(shortCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v; want deadline exceeded", err)
	}
}

// Бинарные ответы без clientMsgId сопоставляются по ожидаемому типу,
// в порядке отправки запросов.
func TestRouter_MatchBinaryByPayloadType(t *testing.T) {
	r := NewRouter(time.Second, testLogger(t))

	first := r.Track("msg-1", openapi.PayloadTypeTraderRes)
	second := r.Track("msg-2", openapi.PayloadTypeTraderRes)

	r.HandleFrame(context.Background(), ctrader.Frame{
		PayloadType: openapi.PayloadTypeTraderRes,
		Payload:     []byte{0x01},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := first.Wait(ctx); err != nil {
		t.Fatalf("first.Wait: %v", err)
	}

	// Второй всё ещё ждёт.
	shortCtx, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	if _, err := second.Wait(shortCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second.Wait err = %v; want deadline exceeded", err)
	}
}

// ErrorRes без clientMsgId достаётся самому старому ожидающему запросу.
func TestRouter_ErrorResMatchesOldestPending(t *testing.T) {
	r := NewRouter(time.Second, testLogger(t))

	oldest := r.Track("msg-1", openapi.PayloadTypeTraderRes)
	r.Track("msg-2", openapi.PayloadTypeSymbolsListRes)

	r.HandleFrame(context.Background(), ctrader.Frame{
		PayloadType: openapi.PayloadTypeErrorRes,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	frame, err := oldest.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if frame.PayloadType != openapi.PayloadTypeErrorRes {
		t.Errorf("PayloadType = %d", frame.PayloadType)
	}
}

// Просроченная запись вытесняется с TimeoutError.
func TestRouter_TimeoutEviction(t *testing.T) {
	r := NewRouter(20*time.Millisecond, testLogger(t))

	p := r.Track("msg-1", openapi.PayloadTypeTraderRes)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := p.Wait(ctx)
	var tErr *ctrader.TimeoutError
	if !errors.As(err, &tErr) {
		t.Fatalf("err = %v; want TimeoutError", err)
	}
	if tErr.ClientMsgID != "msg-1" || tErr.PayloadType != openapi.PayloadTypeTraderRes {
		t.Errorf("TimeoutError = %+v", tErr)
	}

	// Пришедший после вытеснения ответ не ломает маршрутизатор.
	r.HandleFrame(context.Background(), ctrader.Frame{
		ClientMsgID: "msg-1",
		PayloadType: openapi.PayloadTypeTraderRes,
	})
}

func TestRouter_UnsolicitedRoutedToProcessor(t *testing.T) {
	r := NewRouter(time.Second, testLogger(t))
	prod := &fakeProducer{}
	r.Register(openapi.PayloadTypeSpotEvent, NewSpotProcessor(prod, "spots", testLogger(t)))

	bid := uint64(123450)
	body, err := openapi.SpotEvent{AccountID: 1, SymbolID: 42, Bid: &bid}.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	r.HandleFrame(context.Background(), ctrader.Frame{
		PayloadType: openapi.PayloadTypeSpotEvent,
		Payload:     body,
	})

	prod.mu.Lock()
	defer prod.mu.Unlock()
	if len(prod.messages) != 1 {
		t.Fatalf("published %d messages; want 1", len(prod.messages))
	}
	msg := prod.messages[0]
	if msg.topic != "spots" || msg.key != "42" {
		t.Errorf("published to %s key %q", msg.topic, msg.key)
	}
	var decoded openapi.SpotEvent
	if err := decoded.UnmarshalProto(msg.value); err != nil {
		t.Fatalf("published value does not parse: %v", err)
	}
	if decoded.SymbolID != 42 {
		t.Errorf("SymbolID = %d", decoded.SymbolID)
	}
}

// Register может вызываться параллельно с обработкой фреймов.
func TestRouter_RegisterDuringHandleFrame(t *testing.T) {
	r := NewRouter(time.Second, testLogger(t))
	prod := &fakeProducer{}
	log := testLogger(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			r.Register(openapi.PayloadTypeSpotEvent, NewSpotProcessor(prod, "spots", log))
		}
	}()
	for i := 0; i < 100; i++ {
		r.HandleFrame(context.Background(), ctrader.Frame{
			PayloadType: openapi.PayloadTypeSpotEvent,
		})
	}
	<-done
}

func TestExecutionProcessor_PublishesByAccount(t *testing.T) {
	prod := &fakeProducer{}
	proc := NewExecutionProcessor(prod, "executions", testLogger(t))

	body, err := openapi.ExecutionEvent{AccountID: 7, ExecutionType: 2}.MarshalProto()
	if err != nil {
		t.Fatalf("MarshalProto: %v", err)
	}

	err = proc.Process(context.Background(), ctrader.Frame{
		PayloadType: openapi.PayloadTypeExecutionEvent,
		Payload:     body,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(prod.messages) != 1 || prod.messages[0].key != "7" {
		t.Fatalf("messages = %+v", prod.messages)
	}
}

// Ошибка публикации отдаётся наверх; мусорное событие — нет.
func TestSpotProcessor_Errors(t *testing.T) {
	t.Run("publish error propagates", func(t *testing.T) {
		prod := &fakeProducer{err: errors.New("kafka down")}
		proc := NewSpotProcessor(prod, "spots", testLogger(t))
		body, _ := openapi.SpotEvent{SymbolID: 1}.MarshalProto()

		err := proc.Process(context.Background(), ctrader.Frame{Payload: body})
		if err == nil {
			t.Error("expected publish error")
		}
	})

	t.Run("parse error is swallowed", func(t *testing.T) {
		prod := &fakeProducer{}
		proc := NewSpotProcessor(prod, "spots", testLogger(t))

		err := proc.Process(context.Background(), ctrader.Frame{Payload: []byte{0xff, 0xff}})
		if err != nil {
			t.Errorf("Process: %v", err)
		}
		if len(prod.messages) != 0 {
			t.Errorf("published %d messages; want 0", len(prod.messages))
		}
	})
}
