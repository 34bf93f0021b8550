package dc

import (
	"context"
	"errors"
	"sync"
	"time"

	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/modules/kit/errx"
	"Wyrmgus/modules/kit/logx"
)

type MapID = entity.MapID

const DefaultFlushEvery = 3000 * time.Millisecond

// StateSource 提供当前地图状态。Restore 会整体替换状态对象，所以这里不直接持有指针。
type StateSource interface {
	State() *entity.MapState
}

// MapDC 把地图 actor 里的脏状态转成快照，交给后台写库协程；只保留最新版本。
type MapDC struct {
	repo       port.MapRepository
	source     StateSource
	flushEvery time.Duration
	log        logx.Logger

	mu      sync.Mutex
	pending *entity.MapPersistSnapshot
	version uint64
	saved   uint64
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewMapDC(repo port.MapRepository, flushEvery time.Duration, log logx.Logger) *MapDC {
	// 0 用默认值，负数表示不定时刷盘
	if flushEvery == 0 {
		flushEvery = DefaultFlushEvery
	}
	if log == nil {
		log = logx.Nop()
	}
	d := &MapDC{
		repo:       repo,
		flushEvery: flushEvery,
		log:        log,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

// Load 读取已保存的快照。仓库里没有这张地图时返回 nil, nil，由调用方新建。
func (d *MapDC) Load(ctx context.Context, mapID MapID) (*entity.MapPersistSnapshot, error) {
	if d.repo == nil {
		return nil, errx.ErrUnavailable.WithData("reason", "map repository is nil")
	}
	s, err := d.repo.LoadMap(ctx, mapID)
	if errors.Is(err, port.ErrMapNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	if s.Version > d.version {
		d.version = s.Version
		d.saved = s.Version
	}
	d.mu.Unlock()
	return s, nil
}

func (d *MapDC) Bind(src StateSource) {
	d.source = src
}

// Flush 只在有改动时构建快照并入队，不等写库完成。
func (d *MapDC) Flush(ctx context.Context) error {
	if !d.IsDirty() {
		return nil
	}
	if d.repo == nil {
		return errx.ErrUnavailable.WithData("reason", "map repository is nil")
	}
	s, ok := d.buildNextSnapshot()
	if !ok {
		return nil
	}
	d.enqueueLatest(s)
	return nil
}

func (d *MapDC) IsDirty() bool {
	st := d.state()
	if st == nil {
		return false
	}
	return st.Dirty()
}

func (d *MapDC) state() *entity.MapState {
	if d.source == nil {
		return nil
	}
	return d.source.State()
}

func (d *MapDC) FlushEvery() time.Duration {
	return d.flushEvery
}

// Version 是最近一次构建的快照版本。
func (d *MapDC) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// Saved 是最近一次写库成功的快照版本。
func (d *MapDC) Saved() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saved
}

func (d *MapDC) Close(ctx context.Context) error {
	_ = d.Flush(ctx)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *MapDC) buildNextSnapshot() (*entity.MapPersistSnapshot, bool) {
	st := d.state()
	if st == nil {
		return nil, false
	}
	d.mu.Lock()
	d.version++
	version := d.version
	d.mu.Unlock()

	s, ok := st.BuildPersistSnapshot(version)
	if !ok {
		return nil, false
	}
	st.ClearDirty()
	return s, true
}

func (d *MapDC) enqueueLatest(s *entity.MapPersistSnapshot) {
	if s == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *MapDC) popPending() *entity.MapPersistSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.pending
	d.pending = nil
	return s
}

// requeueOnError：已关闭时不再重排，返回 false，保证 writerLoop 能退出。
func (d *MapDC) requeueOnError(s *entity.MapPersistSnapshot) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

func (d *MapDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending()
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

func (d *MapDC) consumePending() {
	for {
		s := d.popPending()
		if s == nil {
			return
		}
		ctx := logx.WithMapID(context.Background(), int64(s.MapID))
		if err := d.repo.Save(ctx, s); err != nil {
			logx.ReportSysErrorWithLoggerContext(ctx, d.log, logx.NewSysLog("dc.MapDC.Save", err))
			// 写库失败时重排当前快照；若已有更新快照，会被更高 version 覆盖。
			if !d.requeueOnError(s) {
				return
			}
			time.Sleep(200 * time.Millisecond)
			continue
		}
		d.mu.Lock()
		if s.Version > d.saved {
			d.saved = s.Version
		}
		d.mu.Unlock()
	}
}
