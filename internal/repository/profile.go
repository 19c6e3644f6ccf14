package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ivanoskov/finance_tracker/internal/log"
	"github.com/ivanoskov/finance_tracker/internal/model"
)

// ProfileRepository читает и пишет строку профиля вошедшего пользователя.
// Клиент и пользователь общие с репозиторием транзакций.
type ProfileRepository struct {
	remote *SupabaseRepository
	table  string
	logger *log.Logger
}

type profileRow struct {
	UserID      string  `json:"user_id"`
	DisplayName *string `json:"display_name"`
}

func NewProfileRepository(remote *SupabaseRepository, table string) *ProfileRepository {
	if table == "" {
		table = "profiles"
	}
	return &ProfileRepository{
		remote: remote,
		table:  table,
		logger: remote.logger.WithComponent("profiles"),
	}
}

// Get возвращает профиль владельца. Нет строки - пустой профиль.
func (p *ProfileRepository) Get(ctx context.Context) (model.Profile, error) {
	userID, err := p.remote.owner(ctx)
	if err != nil {
		return model.Profile{}, err
	}

	data, _, err := p.remote.client.From(p.table).
		Select("*", "", false).
		Eq("user_id", userID).
		Limit(1, "").
		Execute()
	if err != nil {
		return model.Profile{}, &model.RemoteError{Op: "load profile", Err: err}
	}

	var rows []model.Profile
	if err := json.Unmarshal(data, &rows); err != nil {
		return model.Profile{}, &model.RemoteError{Op: "load profile", Err: fmt.Errorf("parse profile: %w", err)}
	}
	if len(rows) == 0 {
		return model.Profile{UserID: userID}, nil
	}
	return rows[0], nil
}

// Upsert сохраняет имя, создавая строку при первом вызове
func (p *ProfileRepository) Upsert(ctx context.Context, displayName string) (model.Profile, error) {
	userID, err := p.remote.owner(ctx)
	if err != nil {
		return model.Profile{}, err
	}

	row := profileRow{UserID: userID}
	if name := strings.TrimSpace(displayName); name != "" {
		row.DisplayName = &name
	}
	data, _, err := p.remote.client.From(p.table).
		Insert(row, true, "user_id", "representation", "").
		Execute()
	if err != nil {
		return model.Profile{}, &model.RemoteError{Op: "save profile", Err: err}
	}

	var rows []model.Profile
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		// Запись прошла, возвращаем отправленное
		saved := model.Profile{UserID: userID}
		if row.DisplayName != nil {
			saved.DisplayName = *row.DisplayName
		}
		return saved, nil
	}
	p.logger.InfoContext(ctx, "Profile saved", "user_id", userID)
	return rows[0], nil
}
