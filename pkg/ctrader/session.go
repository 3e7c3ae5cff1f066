// pkg/ctrader/session.go
package ctrader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/YaganovValera/ctrader-connect/pkg/backoff"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// ConnectionState — состояние сессии.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// writeReq — одна запись в очередь writer-горутины. Результат записи
// возвращается отправителю через done (буфер 1, writer не блокируется).
type writeReq struct {
	msgType int
	data    []byte
	done    chan error
}

// connState — всё, что живёт ровно одно соединение. При reconnect
// создаётся заново; quit закрывается ровно один раз при teardown.
// Сам сокет закрывается через Connector, не здесь.
type connState struct {
	conn     *websocket.Conn
	sendCh   chan writeReq
	quit     chan struct{}
	quitOnce sync.Once
}

func (cs *connState) shutdown() {
	cs.quitOnce.Do(func() { close(cs.quit) })
}

// Session владеет соединением Open API: устанавливает его с повторами,
// держит единственную writer-горутину (запись фреймов строго
// последовательна), слушатель и heartbeat. Отправка авторизационных
// запросов — явная операция вызывающего: успешная передача фрейма не
// означает, что сессия аутентифицирована.
type Session struct {
	cfg     Config
	codec   Codec
	conn    *Connector
	handler FrameHandler
	log     *logger.Logger

	state atomic.Int32

	mu  sync.Mutex
	cur *connState

	done chan error
}

// NewSession создаёт сессию. handler получает каждый успешно
// декодированный входящий фрейм; nil-handler допустим.
func NewSession(cfg Config, handler FrameHandler, log *logger.Logger) (*Session, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	codec, err := NewCodec(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if handler == nil {
		handler = FrameHandlerFunc(func(context.Context, Frame) {})
	}
	l := log.Named("session")
	return &Session{
		cfg:     cfg,
		codec:   codec,
		conn:    NewConnector(cfg.endpoint(), l),
		handler: handler,
		log:     l,
		done:    make(chan error, 1),
	}, nil
}

// State возвращает текущее состояние сессии.
func (s *Session) State() ConnectionState {
	return ConnectionState(s.state.Load())
}

// Done сигнализирует о фоновом отказе соединения: в канал попадает
// первая терминальная ошибка listener/heartbeat/writer.
func (s *Session) Done() <-chan error { return s.done }

// Connect устанавливает соединение, повторяя попытки по ConnectBackoff,
// и запускает writer, listener и heartbeat.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil {
		return nil // уже подключены
	}
	s.state.Store(int32(StateConnecting))

	var conn *websocket.Conn
	err := backoff.Execute(ctx, s.cfg.ConnectBackoff, s.log, func(ctxTry context.Context) error {
		var dialErr error
		conn, dialErr = s.conn.Connect(ctxTry)
		return dialErr
	})
	if err != nil {
		s.state.Store(int32(StateFailed))
		return err
	}

	cs := &connState{
		conn:   conn,
		sendCh: make(chan writeReq, s.cfg.SendQueueSize),
		quit:   make(chan struct{}),
	}
	s.cur = cs
	s.state.Store(int32(StateConnected))
	metrics.Connects.Inc()

	go s.runWriter(cs)
	go s.runListener(cs)
	go s.runHeartbeat(cs)
	return nil
}

// Close закрывает соединение. Повторные вызовы безопасны.
func (s *Session) Close() error {
	s.mu.Lock()
	cs := s.cur
	s.cur = nil
	s.mu.Unlock()

	s.state.Store(int32(StateDisconnected))
	if cs == nil {
		return nil
	}
	metrics.Disconnects.Inc()
	cs.shutdown()
	return s.conn.Close()
}

// Reconnect закрывает текущее соединение и устанавливает новое.
func (s *Session) Reconnect(ctx context.Context) error {
	_ = s.Close()
	return s.Connect(ctx)
}

// fail переводит сессию в Failed после ошибки фоновой задачи.
// Срабатывает только для актуального соединения и только один раз.
func (s *Session) fail(cs *connState, err error) {
	s.mu.Lock()
	if s.cur != cs {
		s.mu.Unlock()
		return
	}
	s.cur = nil
	s.mu.Unlock()

	s.state.Store(int32(StateFailed))
	metrics.Disconnects.Inc()
	cs.shutdown()
	_ = s.conn.Close() // разблокирует listener, если он ещё читает
	s.log.Error("session failed", zap.Error(err))

	select {
	case s.done <- err:
	default:
	}
}

// -----------------------------------------------------------------------------
// Writer: единственная горутина пишет в сокет, фреймы не перемешиваются.
// -----------------------------------------------------------------------------

func (s *Session) runWriter(cs *connState) {
	for {
		select {
		case <-cs.quit:
			return
		case req := <-cs.sendCh:
			_ = cs.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			err := cs.conn.WriteMessage(req.msgType, req.data)
			req.done <- err
			if err != nil {
				metrics.WriteErrors.Inc()
				s.fail(cs, &TransportError{Op: "write", Err: err})
				return
			}
			metrics.FramesSent.Inc()
		}
	}
}

// send кодирует payload со свежим clientMsgId, ставит фрейм в очередь
// writer-а и дожидается результата записи.
func (s *Session) send(ctx context.Context, p openapi.Payload) (string, error) {
	return s.SendPayload(ctx, uuid.NewString(), p)
}

// SendPayload отправляет payload с заданным clientMsgId. Вызывающий,
// который коррелирует ответы, генерирует id сам и регистрирует его до
// постановки фрейма в очередь; пустой id заменяется свежим uuid.
// Возвращается фактический clientMsgId фрейма.
func (s *Session) SendPayload(ctx context.Context, clientMsgID string, p openapi.Payload) (string, error) {
	s.mu.Lock()
	cs := s.cur
	s.mu.Unlock()
	if cs == nil {
		return "", ErrConnClosed
	}

	if clientMsgID == "" {
		clientMsgID = uuid.NewString()
	}
	data, err := s.codec.Encode(p, clientMsgID)
	if err != nil {
		return "", err
	}

	req := writeReq{msgType: s.codec.MessageType(), data: data, done: make(chan error, 1)}
	select {
	case cs.sendCh <- req:
	case <-cs.quit:
		return "", ErrConnClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case err := <-req.done:
		if err != nil {
			return "", &TransportError{Op: "write", Err: err}
		}
		return clientMsgID, nil
	case <-cs.quit:
		return "", ErrConnClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// -----------------------------------------------------------------------------
// Background tasks
// -----------------------------------------------------------------------------

func (s *Session) runListener(cs *connState) {
	err := runListener(cs.conn, cs.quit, s.codec, s.handler, s.log)
	if err != nil {
		s.fail(cs, err)
	}
}

func (s *Session) runHeartbeat(cs *connState) {
	send := func(ctx context.Context) error {
		_, err := s.send(ctx, openapi.HeartbeatEvent{})
		if err == nil {
			metrics.Heartbeats.Inc()
		}
		return err
	}
	if err := runHeartbeat(cs.quit, s.cfg.HeartbeatInterval, send, s.log); err != nil {
		s.fail(cs, err)
	}
}
