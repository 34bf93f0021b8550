package config

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load 读取配置文件并解码到 out（mapstructure tag）。
func Load(configPath string, out any) error {
	v, err := read(configPath)
	if err != nil {
		return err
	}
	return v.Unmarshal(out)
}

// Watch 读取配置并监听文件变化，变化时重新解码到 out 并回调 onChange。
// mu 用来保护 out 的并发读写，调用方读配置时也要持有同一把锁。
func Watch(configPath string, out any, mu *sync.RWMutex, onChange func()) error {
	v, err := read(configPath)
	if err != nil {
		return err
	}
	mu.Lock()
	err = v.Unmarshal(out)
	mu.Unlock()
	if err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Println("配置文件变更", e.Name)
		mu.Lock()
		err := v.Unmarshal(out)
		mu.Unlock()
		if err != nil {
			log.Printf("viper unmarshal change config data failed, err=%v\n", err)
			return
		}
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
	return nil
}

// ReadTree 把任意 yaml/json 文件读成嵌套 key-value 树，内容（地形/地图）解码用。
func ReadTree(path string) (map[string]any, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

// DecodeTree 用 mapstructure 把树解码到结构体，未识别的 key 直接报错，避免内容拼写错误被静默忽略。
func DecodeTree(tree any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(tree)
}

func read(configPath string) (*viper.Viper, error) {
	if !fileExist(configPath) {
		return nil, fmt.Errorf("config file not exist, configPath=%v", configPath)
	}
	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
