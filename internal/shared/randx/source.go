// Package randx 提供整局共享的可播种随机源。
//
// 引擎里所有“均匀随机挑一个”都必须走同一个 Source，且调用顺序固定，
// 这样同一个种子 + 同样的操作序列能复现完全相同的地图（存档/回放依赖这一点）。
package randx

import (
	"math/rand/v2"
)

type Source struct {
	seed  int64
	pcg   *rand.PCG
	r     *rand.Rand
	draws uint64
}

func New(seed int64) *Source {
	pcg := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &Source{
		seed: seed,
		pcg:  pcg,
		r:    rand.New(pcg),
	}
}

func (s *Source) Seed() int64 {
	return s.seed
}

// Draws 返回到目前为止的抽取次数，排查回放不一致时用来对齐调用序列。
func (s *Source) Draws() uint64 {
	return s.draws
}

// Intn 返回 [0, n)；n <= 0 时返回 0 且不消耗随机数。
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.draws++
	return s.r.IntN(n)
}

// Int63 给需要 int64 种子的下游（噪声生成）用。
func (s *Source) Int63() int64 {
	s.draws++
	return s.r.Int64()
}

// Pick 从非空切片里均匀挑一个；空切片返回零值和 false，不消耗随机数。
func Pick[T any](s *Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[s.Intn(len(items))], true
}

// Take 均匀取出并移除一个元素（与最后一个交换后截断，顺序不保留）。
func Take[T any](s *Source, items []T) (T, []T) {
	i := s.Intn(len(items))
	v := items[i]
	last := len(items) - 1
	items[i] = items[last]
	return v, items[:last]
}

// State 导出当前随机状态，存档时和地图快照一起保存。
func (s *Source) State() ([]byte, error) {
	return s.pcg.MarshalBinary()
}

// Restore 恢复 State 导出的状态。
func (s *Source) Restore(state []byte, draws uint64) error {
	if err := s.pcg.UnmarshalBinary(state); err != nil {
		return err
	}
	s.draws = draws
	return nil
}
