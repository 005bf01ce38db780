package repository

import (
	"fmt"

	"github.com/blues/artdrop/internal/config"
	"github.com/blues/artdrop/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Models 投影库中的全部表
var Models = []interface{}{
	&model.CampaignModel{},
	&model.ContributeRecordModel{},
	&model.TokenArtModel{},
	&model.DistributionRecordModel{},
	&model.SettlementRecordModel{},
	&model.RefundRecordModel{},
	&model.EventModel{},
	&model.SyncCursorModel{},
}

// Init 连接数据库并自动迁移
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Open 按 DSN 连接 postgres
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 禁用 GORM 的默认日志输出
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true, // 禁用复数表名
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate 自动迁移全部模型
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
