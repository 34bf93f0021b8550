package actors

import (
	"Wyrmgus/internal/shared/actor/messages"
	"Wyrmgus/internal/world/entity"

	"github.com/asynkron/protoactor-go/actor"
)

type MapID = entity.MapID

// ManagerActor 只做路由：按 MapID 找到（或创建）地图 actor 并转发。
type ManagerActor struct {
	deps      Deps
	mapActors map[MapID]*actor.PID
}

func NewManagerActor(deps Deps) *ManagerActor {
	return &ManagerActor{
		deps:      deps,
		mapActors: make(map[MapID]*actor.PID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Terminated:
		for id, pid := range m.mapActors {
			if pid.Equal(msg.Who) {
				delete(m.mapActors, id)
			}
		}
	case messages.MapMessage:
		ctx.Forward(m.getOrSpawn(ctx, MapID(msg.MapID())))
	}
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, mapID MapID) *actor.PID {
	if pid, ok := m.mapActors[mapID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMapActor(mapID, m.deps)
	})
	pid := ctx.Spawn(props)
	ctx.Watch(pid)
	m.mapActors[mapID] = pid
	return pid
}
