package config

import (
	"fmt"
	"strings"

	"github.com/blues/artdrop/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LedgerConfig 进程内账本配置
type LedgerConfig struct {
	Owner   string `mapstructure:"owner"`    // 部署者地址, 同时是工厂 owner
	DevMode bool   `mapstructure:"dev_mode"` // 是否开放时间推进等开发接口
}

// ChainConfig 远程链配置, 启用后索引器同时读取该链上的 ArtdropV2 事件
type ChainConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ChainType  string `mapstructure:"chain_type"`  // 链类型 (ethereum, polygon, etc.)
	ChainId    int64  `mapstructure:"chain_id"`    // 链ID
	RpcUrl     string `mapstructure:"rpc_url"`     // RPC节点URL
	Registry   string `mapstructure:"registry"`    // ArtdropV2 合约地址
	StartBlock uint64 `mapstructure:"start_block"` // 合约部署区块号
}

type TaskConfig struct {
	Interval       int  `mapstructure:"interval"`        // 事件同步间隔, 秒
	StatusInterval int  `mapstructure:"status_interval"` // 状态刷新间隔, 秒
	BatchSize      int  `mapstructure:"batch_size"`      // 每批处理的区块数
	Workers        int  `mapstructure:"workers"`         // 并发处理活动合约日志的协程数
	AutoRefund     bool `mapstructure:"auto_refund"`     // 是否自动退还失败的本地活动
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// DefaultOwner hardhat 默认账户 0
const DefaultOwner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// Load 从 path 或默认搜索路径读取配置, 环境变量前缀 ARTDROP_
func Load(path string) *Config {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/artdrop")
	}

	setDefaults(v)

	// 自动读取环境变量, 如 ARTDROP_DATABASE_HOST
	v.SetEnvPrefix("artdrop")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "artdrop")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("ledger.owner", DefaultOwner)
	v.SetDefault("ledger.dev_mode", true)
	v.SetDefault("chain.enabled", false)
	v.SetDefault("chain.chain_type", "ethereum")
	v.SetDefault("chain.chain_id", 31337)
	v.SetDefault("chain.rpc_url", "http://127.0.0.1:8545")
	v.SetDefault("chain.start_block", 0)
	v.SetDefault("task.interval", 5)
	v.SetDefault("task.status_interval", 30)
	v.SetDefault("task.batch_size", 500)
	v.SetDefault("task.workers", 8)
	v.SetDefault("task.auto_refund", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// GetLevel 实现 logger.Config 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.Config 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.Config 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// DSN gorm postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}
