package dispatch

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/YaganovValera/ctrader-connect/internal/metrics"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

var routerTracer = otel.Tracer("ctrader-connect/dispatch/router")

// DefaultResponseTimeout — срок жизни записи в таблице корреляции.
const DefaultResponseTimeout = 15 * time.Second

// result доставляется ожидающему запросу: либо фрейм, либо ошибка.
type result struct {
	frame ctrader.Frame
	err   error
}

// pending — один запрос, ждущий ответа. JSON-ответы сопоставляются по
// clientMsgId, бинарные — по ожидаемому payloadType (FIFO в порядке
// отправки). Таймер вытесняет запись с TimeoutError.
type pending struct {
	clientMsgID string
	resType     openapi.PayloadType
	ch          chan result
	timer       *time.Timer
}

// Router — маршрутизатор входящих фреймов: ответы доставляются
// ожидающим запросам, незапрошенные события уходят в зарегистрированные
// процессоры. Реализует ctrader.FrameHandler.
type Router struct {
	log     *logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	byMsgID map[string]*pending
	order   []*pending // порядок отправки, для бинарной корреляции
	procs   map[openapi.PayloadType]Processor
}

// NewRouter создаёт маршрутизатор. timeout <= 0 заменяется значением
// по умолчанию.
func NewRouter(timeout time.Duration, log *logger.Logger) *Router {
	if timeout <= 0 {
		timeout = DefaultResponseTimeout
	}
	return &Router{
		log:     log.Named("router"),
		timeout: timeout,
		byMsgID: make(map[string]*pending),
		procs:   make(map[openapi.PayloadType]Processor),
	}
}

// Register добавляет обработчик незапрошенных событий данного типа.
func (r *Router) Register(pt openapi.PayloadType, proc Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[pt] = proc
}

// Pending — ожидание ответа на отправленный запрос.
type Pending struct {
	ch <-chan result
}

// Wait блокируется до прихода ответа, вытеснения по таймауту или
// отмены контекста.
func (p *Pending) Wait(ctx context.Context) (ctrader.Frame, error) {
	select {
	case res := <-p.ch:
		return res.frame, res.err
	case <-ctx.Done():
		return ctrader.Frame{}, ctx.Err()
	}
}

// Track регистрирует отправленный запрос в таблице корреляции.
// resType — ожидаемый тип ответа (для бинарной кодировки, где во
// фрейме нет clientMsgId).
func (r *Router) Track(clientMsgID string, resType openapi.PayloadType) *Pending {
	p := &pending{
		clientMsgID: clientMsgID,
		resType:     resType,
		ch:          make(chan result, 1),
	}
	p.timer = time.AfterFunc(r.timeout, func() { r.evict(p) })

	r.mu.Lock()
	r.byMsgID[clientMsgID] = p
	r.order = append(r.order, p)
	r.mu.Unlock()

	metrics.PendingRequests.Inc()
	return &Pending{ch: p.ch}
}

// evict удаляет просроченную запись и отдаёт ожидающему TimeoutError.
func (r *Router) evict(p *pending) {
	r.mu.Lock()
	if _, ok := r.byMsgID[p.clientMsgID]; !ok {
		r.mu.Unlock()
		return // уже доставлен
	}
	r.remove(p)
	r.mu.Unlock()

	metrics.CorrelationTimeouts.Inc()
	metrics.PendingRequests.Dec()
	r.log.Warn("request timed out",
		zap.String("client_msg_id", p.clientMsgID),
		zap.Stringer("expected", p.resType),
	)
	p.ch <- result{err: &ctrader.TimeoutError{ClientMsgID: p.clientMsgID, PayloadType: p.resType}}
}

// remove вычищает запись из обеих структур. Вызывается под mu.
func (r *Router) remove(p *pending) {
	delete(r.byMsgID, p.clientMsgID)
	for i, q := range r.order {
		if q == p {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// match ищет ожидающий запрос для входящего фрейма.
func (r *Router) match(f ctrader.Frame) *pending {
	r.mu.Lock()
	defer r.mu.Unlock()

	// JSON: сервер эхом возвращает clientMsgId запроса. Незнакомый id —
	// не наш ожидающий запрос, по типу чужие фреймы не сопоставляем.
	if f.ClientMsgID != "" {
		if p, ok := r.byMsgID[f.ClientMsgID]; ok {
			r.remove(p)
			return p
		}
		return nil
	}

	// Бинарная кодировка не несёт clientMsgId: первый ожидающий с
	// подходящим типом ответа (порядок отправки).
	for _, p := range r.order {
		if p.resType == f.PayloadType {
			r.remove(p)
			return p
		}
	}
	// ErrorRes без clientMsgId относится к самому старому запросу.
	if f.PayloadType == openapi.PayloadTypeErrorRes && len(r.order) > 0 {
		p := r.order[0]
		r.remove(p)
		return p
	}
	return nil
}

// HandleFrame реализует ctrader.FrameHandler.
func (r *Router) HandleFrame(ctx context.Context, f ctrader.Frame) {
	ctx, span := routerTracer.Start(ctx, "Router.HandleFrame")
	defer span.End()
	metrics.FramesRouted.Inc()

	if p := r.match(f); p != nil {
		p.timer.Stop()
		metrics.ResponsesMatched.Inc()
		metrics.PendingRequests.Dec()
		p.ch <- result{frame: f}
		return
	}

	r.mu.Lock()
	proc, ok := r.procs[f.PayloadType]
	r.mu.Unlock()
	if !ok {
		r.log.WithContext(ctx).Debug("unhandled frame",
			zap.Stringer("payload_type", f.PayloadType),
		)
		return
	}
	if err := proc.Process(ctx, f); err != nil {
		r.log.WithContext(ctx).Error("event processing failed",
			zap.Stringer("payload_type", f.PayloadType),
			zap.Error(err),
		)
		metrics.PublishErrors.Inc()
	}
}
