package actors

import (
	"context"
	"time"

	"Wyrmgus/internal/shared/actor/messages"
	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/dc"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/service"
	"Wyrmgus/modules/kit/errx"
	"Wyrmgus/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

// MapActor 独占一张地图：所有修改都在它的邮箱里串行执行。
type MapActor struct {
	state      State
	mapID      MapID
	deps       Deps
	log        logx.Logger
	dc         *dc.MapDC
	svc        *service.MapService
	dispatcher *Dispatcher
	flushStop  chan struct{}

	// 当前处理中的消息名，只在 Dispatch 期间有值
	op string
}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

func NewMapActor(mapID MapID, deps Deps) *MapActor {
	log := deps.Logger
	if log == nil {
		log = logx.Nop()
	}
	return &MapActor{
		state:      None,
		mapID:      mapID,
		deps:       deps,
		log:        log,
		dc:         dc.NewMapDC(deps.Repo, deps.FlushEvery, log),
		dispatcher: NewDispatcher(),
	}
}

func (p *MapActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.stopFlushLoop()
		closeCtx, cancel := context.WithTimeout(p.ctx(), 3*time.Second)
		defer cancel()
		if err := p.dc.Close(closeCtx); err != nil {
			logx.ReportSysErrorWithLoggerContext(closeCtx, p.log, logx.NewSysLog("actors.MapActor.Close", err))
		}
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopFlushLoop()
		p.state = Offline
		return
	case *actor.Restarting:
		p.stopFlushLoop()
		p.state = Init
		return
	case flushTick:
		if p.state != Online {
			return
		}
		if err := p.dc.Flush(p.ctx()); err != nil {
			logx.ReportSysErrorWithLoggerContext(p.ctx(), p.log, logx.NewSysLog("actors.MapActor.Flush", err))
		}
		return
	case messages.MapMessage:
		if p.state != Online {
			ctx.Respond(failCode(errx.CodeUnavailable, "map not online"))
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *MapActor) ctx() context.Context {
	c := logx.WithMapID(context.Background(), int64(p.mapID))
	if p.op != "" {
		c = logx.WithOp(c, p.op)
	}
	return c
}

func (p *MapActor) init(ctx actor.Context) {
	c := p.ctx()
	state := entity.NewMapState(p.mapID, p.deps.Registry, randx.New(p.deps.mapSeed(p.mapID)), p.deps.Settings)
	p.svc = service.NewMapService(state, service.Deps{
		Logger:      p.log,
		Settlements: p.deps.Settlements,
		Units:       p.deps.Units,
		Observer:    p.deps.Observer,
	})

	snap, err := p.dc.Load(c, p.mapID)
	if err == nil {
		if snap != nil {
			err = p.svc.Restore(c, snap)
		} else {
			err = p.bootstrap(c)
		}
	}
	if err != nil {
		logx.ReportSysErrorWithLoggerContext(c, p.log, logx.NewSysLog("actors.MapActor.init", err))
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}
	p.dc.Bind(p.svc)
	p.state = Online
	p.startFlushLoop(ctx)
}

// bootstrap 新地图按配置的手工层建图，再整体预处理一次。
func (p *MapActor) bootstrap(ctx context.Context) error {
	if len(p.deps.Authored) == 0 {
		return nil
	}
	for _, def := range p.deps.Authored {
		if _, err := p.svc.ApplyAuthoredLayer(ctx, def); err != nil {
			return err
		}
	}
	_, err := p.svc.Preprocess(ctx)
	return err
}

func (p *MapActor) MapID() MapID {
	return p.mapID
}

func (p *MapActor) Service() *service.MapService {
	return p.svc
}

func (p *MapActor) DC() *dc.MapDC {
	return p.dc
}

func (p *MapActor) startFlushLoop(ctx actor.Context) {
	if p.flushStop != nil {
		return
	}
	interval := p.dc.FlushEvery()
	if interval <= 0 {
		return
	}
	p.flushStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	go func(stop <-chan struct{}, every time.Duration) {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				root.Send(self, flushTick{})
			case <-stop:
				return
			}
		}
	}(p.flushStop, interval)
}

func (p *MapActor) stopFlushLoop() {
	if p.flushStop == nil {
		return
	}
	close(p.flushStop)
	p.flushStop = nil
}
