package actor

import (
	"context"
	"errors"
	"time"

	"Wyrmgus/internal/shared/actor/messages"
	"Wyrmgus/internal/world/actors"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/generate"
	"Wyrmgus/internal/world/service"
	"Wyrmgus/internal/world/territory"
	"Wyrmgus/modules/kit/errx"

	protoactor "github.com/asynkron/protoactor-go/actor"
)

const defaultAskTimeout = 3 * time.Second

// RuntimeError 是 actor 边界上的错误，Code 沿用 errx 错误码。
type RuntimeError struct {
	Code    errx.Code
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Runtime 是地图服务对外的入口：外部只拿到它，所有请求经管理 actor 路由到对应地图。
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration
}

func NewRuntime(deps actors.Deps, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(deps)
	})
	manager := root.Spawn(managerProps)

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

// Shutdown 先停管理 actor（子 actor 随之停止并刷盘），再关 actor 系统。
func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.manager != nil {
		_ = r.root.StopFuture(r.manager).Wait()
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func (r *Runtime) request(pid *protoactor.PID, msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil {
		return nil, &RuntimeError{Code: errx.CodeInternal, Message: "actor runtime 未初始化"}
	}
	if pid == nil {
		return nil, &RuntimeError{Code: errx.CodeInternal, Message: "actor pid 为空"}
	}

	future := r.root.RequestFuture(pid, msg, timeout)
	res, err := future.Result()
	if err != nil {
		return nil, &RuntimeError{
			Code:    errx.CodeUnavailable,
			Message: "actor 请求失败",
			Cause:   err,
		}
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}

// Ask 发送一条地图请求，成功时返回应答里的 Payload。
func (r *Runtime) Ask(ctx context.Context, msg messages.MapMessage) (any, error) {
	if msg == nil {
		return nil, &RuntimeError{Code: errx.CodeReqParamError, Message: "map request 不能为空"}
	}
	res, err := r.request(r.manager, msg, r.timeoutFromContext(ctx))
	if err != nil {
		return nil, err
	}
	reply, ok := res.(messages.Reply)
	if !ok {
		return nil, &RuntimeError{Code: errx.CodeInternal, Message: "actor 返回类型非法"}
	}
	if !reply.Ok {
		return nil, &RuntimeError{Code: errx.Code(reply.Code), Message: reply.Message}
	}
	return reply.Payload, nil
}

func ask[T any](r *Runtime, ctx context.Context, msg messages.MapMessage) (T, error) {
	var zero T
	payload, err := r.Ask(ctx, msg)
	if err != nil {
		return zero, err
	}
	if payload == nil {
		return zero, nil
	}
	v, ok := payload.(T)
	if !ok {
		return zero, &RuntimeError{Code: errx.CodeInternal, Message: "actor 应答内容类型非法"}
	}
	return v, nil
}

func base(mapID entity.MapID) messages.MapBaseMessage {
	return messages.MapBaseMessage{MapId: int64(mapID)}
}

func (r *Runtime) SetTileTerrain(ctx context.Context, mapID entity.MapID, layer, x, y int, terrain string) error {
	_, err := r.Ask(ctx, messages.HMSetTileTerrain{MapBaseMessage: base(mapID), Layer: layer, X: x, Y: y, Terrain: terrain})
	return err
}

func (r *Runtime) RemoveOverlay(ctx context.Context, mapID entity.MapID, layer, x, y int) error {
	_, err := r.Ask(ctx, messages.HMRemoveOverlay{MapBaseMessage: base(mapID), Layer: layer, X: x, Y: y})
	return err
}

func (r *Runtime) DestroyOverlay(ctx context.Context, mapID entity.MapID, layer, x, y int) (bool, error) {
	return ask[bool](r, ctx, messages.HMDestroyOverlay{MapBaseMessage: base(mapID), Layer: layer, X: x, Y: y})
}

func (r *Runtime) Preprocess(ctx context.Context, mapID entity.MapID) (service.PreprocessReport, error) {
	return ask[service.PreprocessReport](r, ctx, messages.HMPreprocess{MapBaseMessage: base(mapID)})
}

func (r *Runtime) RecalculateTerritory(ctx context.Context, mapID entity.MapID, layer int) (territory.Report, error) {
	return ask[territory.Report](r, ctx, messages.HMRecalculateTerritory{MapBaseMessage: base(mapID), Layer: layer})
}

func (r *Runtime) GenerateTerrain(ctx context.Context, req messages.HMGenerateTerrain) (generate.Report, error) {
	return ask[generate.Report](r, ctx, req)
}

func (r *Runtime) GenerateMissingTerrain(ctx context.Context, mapID entity.MapID, layer int, region messages.Region) (generate.MissingReport, error) {
	return ask[generate.MissingReport](r, ctx, messages.HMGenerateMissingTerrain{MapBaseMessage: base(mapID), Layer: layer, Region: region})
}

func (r *Runtime) Tile(ctx context.Context, mapID entity.MapID, layer, x, y int) (service.TileView, error) {
	return ask[service.TileView](r, ctx, messages.HMTile{MapBaseMessage: base(mapID), Layer: layer, X: x, Y: y})
}

func (r *Runtime) Snapshot(ctx context.Context, mapID entity.MapID) (*entity.MapPersistSnapshot, error) {
	return ask[*entity.MapPersistSnapshot](r, ctx, messages.HMSnapshot{MapBaseMessage: base(mapID)})
}

// Flush 返回交给写库协程的快照版本。
func (r *Runtime) Flush(ctx context.Context, mapID entity.MapID) (uint64, error) {
	return ask[uint64](r, ctx, messages.HMFlush{MapBaseMessage: base(mapID)})
}

func CodeFromError(err error) errx.Code {
	if err == nil {
		return ""
	}
	var re *RuntimeError
	if errors.As(err, &re) && re != nil && re.Code != "" {
		return re.Code
	}
	if code := errx.CodeOf(err); code != "" {
		return code
	}
	return errx.CodeInternal
}
