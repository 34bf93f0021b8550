package serverconfig

import (
	"sync"

	"Wyrmgus/internal/shared/config"
)

var (
	mu   sync.RWMutex
	Conf Config
)

// Load 解析配置文件并开启热更新；cfgName 为空时向上查找 configs/conf.yml。
// 热更新只影响之后新建的地图（引擎参数在建图时拷贝一份）。
func Load(cfgName string) error {
	path, err := config.Resolve(cfgName)
	if err != nil {
		return err
	}
	if err := config.Watch(path, &Conf, &mu, nil); err != nil {
		return err
	}
	mu.Lock()
	Conf.Engine.applyDefaults()
	mu.Unlock()
	return nil
}

// Get 返回当前配置的一份拷贝，热更新期间读取也是安全的。
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	c := Conf
	c.Engine.applyDefaults()
	return c
}
