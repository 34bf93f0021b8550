package serverconfig

type Config struct {
	MySQL   MySQLConfig   `yaml:"mysql" mapstructure:"mysql"`
	MongoDB MongoDBConfig `yaml:"mongodb" mapstructure:"mongodb"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	World   WorldConfig   `yaml:"world" mapstructure:"world"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
	ShowSQL  bool   `yaml:"show_sql" mapstructure:"show_sql"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

// StorageConfig 选择地图快照落盘方式：memory / mongodb / mysql。
type StorageConfig struct {
	Driver       string `yaml:"driver" mapstructure:"driver"`
	FlushEveryMs int    `yaml:"flush_every_ms" mapstructure:"flush_every_ms"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// EngineConfig 是地形引擎参数。
type EngineConfig struct {
	Seed                int64 `yaml:"seed" mapstructure:"seed"`
	DecorationWeight    int   `yaml:"decoration_weight" mapstructure:"decoration_weight"`
	MaxFixedPointPasses int   `yaml:"max_fixed_point_passes" mapstructure:"max_fixed_point_passes"`
	EditorRunning       bool  `yaml:"editor_running" mapstructure:"editor_running"`
}

const (
	DefaultDecorationWeight    = 8
	DefaultMaxFixedPointPasses = 100
)

func (e *EngineConfig) applyDefaults() {
	if e.DecorationWeight <= 0 {
		e.DecorationWeight = DefaultDecorationWeight
	}
	if e.MaxFixedPointPasses <= 0 {
		e.MaxFixedPointPasses = DefaultMaxFixedPointPasses
	}
}

// WorldConfig 描述启动时加载哪张地图。
type WorldConfig struct {
	MapID        int64  `yaml:"map_id" mapstructure:"map_id"`
	NodeID       int64  `yaml:"node_id" mapstructure:"node_id"`
	TerrainTypes string `yaml:"terrain_types" mapstructure:"terrain_types"`
	MapData      string `yaml:"map_data" mapstructure:"map_data"`
}
