package service

import (
	"context"
	"fmt"
	"strconv"

	"guildbank/models"
)

// Guild setting keys.
const (
	settingEliteRole      = "elite_role_id"
	settingMasterRole     = "master_role_id"
	settingSupremeRole    = "supreme_role_id"
	settingCommissionRate = "commission_rate"
)

type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
	}
}

// GetTierRoles returns the configured rank role IDs for a guild
func (s *guildSettingsService) GetTierRoles(ctx context.Context, guildID int64) (models.TierRoles, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return models.TierRoles{}, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	repo := uow.GuildSettingsRepository()

	var roles models.TierRoles
	for key, dest := range map[string]*int64{
		settingEliteRole:   &roles.Elite,
		settingMasterRole:  &roles.Master,
		settingSupremeRole: &roles.Supreme,
	} {
		value, err := repo.Get(ctx, key)
		if err != nil {
			return models.TierRoles{}, storageErr("get setting", err)
		}
		if value == "" {
			continue
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return models.TierRoles{}, fmt.Errorf("malformed role id in setting %q: %w", key, err)
		}
		*dest = id
	}

	if err := uow.Commit(); err != nil {
		return models.TierRoles{}, storageErr("commit transaction", err)
	}

	return roles, nil
}

// SetTierRole assigns the role ID for a rank tier
func (s *guildSettingsService) SetTierRole(ctx context.Context, guildID int64, tier models.TierName, roleID int64) error {
	var key string
	switch tier {
	case models.TierElite:
		key = settingEliteRole
	case models.TierMaster:
		key = settingMasterRole
	case models.TierSupreme:
		key = settingSupremeRole
	default:
		return fmt.Errorf("tier %q has no role setting", tier)
	}

	return s.set(ctx, guildID, key, strconv.FormatInt(roleID, 10))
}

// GetCommissionRate returns the marketplace commission rate
func (s *guildSettingsService) GetCommissionRate(ctx context.Context, guildID int64) (float64, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	rate, err := commissionRate(ctx, uow.GuildSettingsRepository())
	if err != nil {
		return 0, storageErr("get commission rate", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, storageErr("commit transaction", err)
	}

	return rate, nil
}

// SetCommissionRate updates the marketplace commission rate
func (s *guildSettingsService) SetCommissionRate(ctx context.Context, guildID int64, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("commission rate must be between 0 and 1, got %v", rate)
	}
	return s.set(ctx, guildID, settingCommissionRate, strconv.FormatFloat(rate, 'f', -1, 64))
}

func (s *guildSettingsService) set(ctx context.Context, guildID int64, key, value string) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return storageErr("begin transaction", err)
	}
	defer uow.Rollback()

	if err := uow.GuildSettingsRepository().Set(ctx, key, value); err != nil {
		return storageErr("set setting", err)
	}

	if err := uow.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// commissionRate reads the guild's commission rate inside an open
// transaction, falling back to the default when unset.
func commissionRate(ctx context.Context, repo GuildSettingsRepository) (float64, error) {
	value, err := repo.Get(ctx, settingCommissionRate)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return DefaultCommissionRate, nil
	}

	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || rate < 0 || rate > 1 {
		return DefaultCommissionRate, nil
	}
	return rate, nil
}
