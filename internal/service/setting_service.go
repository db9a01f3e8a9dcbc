package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/config"
	"github.com/stemsi/tuition-backend/internal/logger"
	"github.com/stemsi/tuition-backend/internal/model"
	"github.com/stemsi/tuition-backend/internal/repository"
)

// settingCacheTTL bounds how long a node may serve a setting changed by another node.
const settingCacheTTL = 5 * time.Minute

type SettingService struct {
	settingRepo SettingStore
	rdb         redis.Cmdable
	log         zerolog.Logger
	feeModeSubs []FeeModeListener
}

// NewSettingService creates a SettingService. A nil rdb disables caching.
func NewSettingService(settingRepo SettingStore, rdb redis.Cmdable, log zerolog.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		rdb:         rdb,
		log:         logger.Component(log, "setting_service"),
	}
}

// Notify registers l for fee mode changes.
func (s *SettingService) Notify(l FeeModeListener) { s.feeModeSubs = append(s.feeModeSubs, l) }

func (s *SettingService) feeModeChanged(ctx context.Context) {
	for _, l := range s.feeModeSubs {
		l.FeeModeChanged(ctx)
	}
}

func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settingsList, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}

	settingsMap := make(map[string]string)
	for _, setting := range settingsList {
		settingsMap[setting.Key] = setting.Value
	}
	if _, ok := settingsMap[model.SettingFeeMode]; !ok {
		settingsMap[model.SettingFeeMode] = string(model.DefaultFeeMode)
	}
	return settingsMap, nil
}

// UpdateSettings upserts every pair. A fee mode value is normalised and
// rejected when unknown, before anything is written.
func (s *SettingService) UpdateSettings(ctx context.Context, settingsMap map[string]string) error {
	if raw, ok := settingsMap[model.SettingFeeMode]; ok {
		mode, err := model.ParseFeeMode(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSetting, err)
		}
		settingsMap[model.SettingFeeMode] = string(mode)
	}

	for key, value := range settingsMap {
		if err := s.settingRepo.Upsert(ctx, key, value); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("failed to update setting")
			return err
		}
		s.invalidate(ctx, key)
	}
	if _, ok := settingsMap[model.SettingFeeMode]; ok {
		s.feeModeChanged(ctx)
	}
	return nil
}

func (s *SettingService) GetSettingByKey(ctx context.Context, key string) (string, error) {
	if s.rdb != nil {
		if v, err := s.rdb.Get(ctx, config.CacheKey.SettingKey(key)).Result(); err == nil {
			return v, nil
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("setting cache read failed")
		}
	}

	setting, err := s.settingRepo.GetByKey(ctx, key)
	if err != nil {
		return "", err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, config.CacheKey.SettingKey(key), setting.Value, settingCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("setting cache write failed")
		}
	}
	return setting.Value, nil
}

// FeeMode returns the configured fee calculation mode. A missing or
// unreadable value falls back to the default mode.
func (s *SettingService) FeeMode(ctx context.Context) (model.FeeMode, error) {
	raw, err := s.GetSettingByKey(ctx, model.SettingFeeMode)
	if errors.Is(err, repository.ErrNotFound) {
		return model.DefaultFeeMode, nil
	}
	if err != nil {
		return "", err
	}

	mode, err := model.ParseFeeMode(raw)
	if err != nil {
		s.log.Warn().Str("value", raw).Msg("stored fee mode is invalid, using default")
		return model.DefaultFeeMode, nil
	}
	return mode, nil
}

// SetFeeMode stores the fee calculation mode.
func (s *SettingService) SetFeeMode(ctx context.Context, mode model.FeeMode) (model.FeeMode, error) {
	parsed, err := model.ParseFeeMode(string(mode))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	if err := s.settingRepo.Upsert(ctx, model.SettingFeeMode, string(parsed)); err != nil {
		s.log.Error().Err(err).Msg("failed to store fee mode")
		return "", err
	}
	s.invalidate(ctx, model.SettingFeeMode)
	s.feeModeChanged(ctx)

	s.log.Info().Str("mode", string(parsed)).Msg("fee calculation mode changed")
	return parsed, nil
}

func (s *SettingService) invalidate(ctx context.Context, key string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.SettingKey(key)).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("setting cache invalidation failed")
	}
}
