package model

import "time"

const TableNameActionLog = "action_log"

type ActionLog struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Identity   string    `gorm:"column:identity;not null" json:"identity"`
	Action     string    `gorm:"column:action;not null" json:"action"`
	Amount     int64     `gorm:"column:amount;not null" json:"amount"`
	Outcome    string    `gorm:"column:outcome;not null" json:"outcome"`
	ErrorCode  string    `gorm:"column:error_code;not null" json:"error_code"`
	Message    string    `gorm:"column:message;not null" json:"message"`
	RolledBack bool      `gorm:"column:rolled_back;not null" json:"rolled_back"`
	TxHash     string    `gorm:"column:tx_hash;not null" json:"tx_hash"`
	StartedAt  time.Time `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt time.Time `gorm:"column:finished_at;not null" json:"finished_at"`
}

func (*ActionLog) TableName() string {
	return TableNameActionLog
}
