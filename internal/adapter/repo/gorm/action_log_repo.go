package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hyligotchi/internal/adapter/repo/gorm/model"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

// ActionLogRepo stores the action journal. When Retain is positive only the
// newest Retain rows per identity are kept.
type ActionLogRepo struct {
	db     *gorm.DB
	Retain int
}

func NewActionLogRepo(db *gorm.DB, retain int) ActionLogRepo {
	return ActionLogRepo{db: db, Retain: retain}
}

func (r ActionLogRepo) Append(ctx context.Context, record ports.ActionLogRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	row := toModel(record)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if r.Retain <= 0 {
			return nil
		}
		keep := tx.Model(&model.ActionLog{}).
			Select("id").
			Where("identity = ?", record.Identity).
			Order("started_at DESC").
			Limit(r.Retain)
		return tx.Where("identity = ? AND id NOT IN (?)", record.Identity, keep).
			Delete(&model.ActionLog{}).Error
	})
}

func (r ActionLogRepo) ListByIdentity(ctx context.Context, identity string, limit int) ([]ports.ActionLogRecord, error) {
	rows := []model.ActionLog{}
	query := r.db.WithContext(ctx).
		Where(&model.ActionLog{Identity: identity}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "started_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	out := make([]ports.ActionLogRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func toModel(r ports.ActionLogRecord) model.ActionLog {
	return model.ActionLog{
		ID:         r.ID,
		Identity:   r.Identity,
		Action:     string(r.Action),
		Amount:     int64(r.Amount),
		Outcome:    r.Outcome,
		ErrorCode:  r.ErrorCode,
		Message:    r.Message,
		RolledBack: r.RolledBack,
		TxHash:     r.TxHash,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func fromModel(row model.ActionLog) ports.ActionLogRecord {
	return ports.ActionLogRecord{
		ID:         row.ID,
		Identity:   row.Identity,
		Action:     pet.ActionType(row.Action),
		Amount:     int(row.Amount),
		Outcome:    row.Outcome,
		ErrorCode:  row.ErrorCode,
		Message:    row.Message,
		RolledBack: row.RolledBack,
		TxHash:     row.TxHash,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}
}
