package utils

// Stabilize 反复执行 step 直到某一轮没有任何变化（不动点）或达到 maxPasses 上限。
//
// 达到上限不是错误：返回 converged=false，调用方接受当前结果。
// step 的参数是从 1 开始的轮次，返回这一轮是否改动过状态。
func Stabilize(maxPasses int, step func(pass int) bool) (converged bool, passes int) {
	for passes < maxPasses {
		passes++
		if !step(passes) {
			return true, passes
		}
	}
	return false, passes
}
