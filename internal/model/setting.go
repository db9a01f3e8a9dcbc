package model

import "time"

// SettingFeeMode is the app setting key holding the fee calculation mode.
const SettingFeeMode = "fee_calculation_mode"

// AppSetting represents a key-value pair for global application configuration.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1,dive,keys,min=1,max=100,endkeys,max=1000"`
}

// FeeModeRequest switches the fee calculation mode.
type FeeModeRequest struct {
	Mode FeeMode `json:"mode" binding:"required,fee_mode"`
}
