package core

import (
	"encoding/json"
	"fmt"
)

// DefaultInstallmentFrequency is the due-date spacing in months for
// insurance-style installment utilities when no config is set.
const DefaultInstallmentFrequency = 4

// UtilityConfig is the typed per-utility-type configuration payload.
// Each variant carries only the fields relevant to its utility type and
// is validated at construction instead of being kept as an untyped blob.
type UtilityConfig interface {
	AppliesTo() UtilityType
	Validate() error
}

// InstallmentConfig configures insurance-style installment utilities
// (e.g. CASCO paid every 4 months).
type InstallmentConfig struct {
	FrequencyMonths int `json:"frequency_months"`
}

func (c InstallmentConfig) AppliesTo() UtilityType { return UtilityInstallment }

func (c InstallmentConfig) Validate() error {
	if c.FrequencyMonths < 1 || c.FrequencyMonths > 12 {
		return fmt.Errorf("%w: frequency_months must be between 1 and 12", ErrInvalidArgument)
	}
	return nil
}

// ParseConfig decodes a raw config payload for the given utility type.
// An empty payload is valid for every type and yields a nil config.
func ParseConfig(t UtilityType, raw json.RawMessage) (UtilityConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch t {
	case UtilityInstallment:
		var cfg InstallmentConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("%w: malformed installment config: %v", ErrInvalidArgument, err)
		}
		if cfg.FrequencyMonths == 0 {
			cfg.FrequencyMonths = DefaultInstallmentFrequency
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("%w: utility type %q takes no config", ErrInvalidArgument, t)
	}
}

// EncodeConfig renders a config for storage. Nil configs encode to "".
func EncodeConfig(cfg UtilityConfig) (string, error) {
	if cfg == nil {
		return "", nil
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode utility config: %w", err)
	}
	return string(b), nil
}
