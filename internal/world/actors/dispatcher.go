package actors

import (
	"reflect"

	"Wyrmgus/internal/shared/actor/messages"
	"Wyrmgus/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, MH.HandleAddLayer)
	register(d, MH.HandleApplyAuthoredLayer)
	register(d, MH.HandleSetTileTerrain)
	register(d, MH.HandleRemoveOverlay)
	register(d, MH.HandleDamageOverlay)
	register(d, MH.HandleDestroyOverlay)
	register(d, MH.HandleApplyCorrections)
	register(d, MH.HandlePreprocess)
	register(d, MH.HandleRecalculateTerritory)
	register(d, MH.HandleGenerateTerrain)
	register(d, MH.HandleGenerateMissingTerrain)
	register(d, MH.HandleGenerateNoiseTerrain)
	register(d, MH.HandleTile)
	register(d, MH.HandleMarkSeen)
	register(d, MH.HandleSnapshot)
	register(d, MH.HandleFlush)
	register(d, MH.HandleReset)
}

func register[Req any](
	d *Dispatcher,
	fn func(ctx actor.Context, p *MapActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, p *MapActor, req messages.MapMessage) {
	if req == nil {
		ctx.Respond(failCode(errx.CodeReqParamError, "nil req"))
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		ctx.Respond(failCode(errx.CodeReqParamError, "no handler for "+bodyType.String()))
		return
	}

	if bodyType != handler.reqType {
		ctx.Respond(failCode(errx.CodeReqParamError, "request body type mismatch"))
		return
	}

	p.op = bodyType.Name()
	defer func() { p.op = "" }()
	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(p),
		reflect.ValueOf(req),
	})
}
