package config

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SeriesConfig describes how numbers of one voucher type are rendered.
type SeriesConfig struct {
	Template string `mapstructure:"template"`
	Start    int64  `mapstructure:"start"`
}

// NumberingConfig maps a voucher type to its series settings.
type NumberingConfig struct {
	Series map[string]SeriesConfig `mapstructure:"series"`
}

func DefaultNumberingConfig() NumberingConfig {
	return NumberingConfig{
		Series: map[string]SeriesConfig{
			"payment":  {Template: "PAY-{SEQ6}", Start: 1},
			"receipt":  {Template: "RCT-{SEQ6}", Start: 1},
			"sales":    {Template: "SAL-{SEQ6}", Start: 1},
			"purchase": {Template: "PUR-{SEQ6}", Start: 1},
		},
	}
}

// SeriesFor returns the series for a voucher type, falling back to the defaults.
func (c NumberingConfig) SeriesFor(voucherType string) SeriesConfig {
	key := strings.ToLower(strings.TrimSpace(voucherType))
	if series, ok := c.Series[key]; ok {
		return series
	}
	if series, ok := DefaultNumberingConfig().Series[key]; ok {
		return series
	}
	return SeriesConfig{Template: strings.ToUpper(key) + "-{SEQ6}", Start: 1}
}

type NumberingConfigHolder struct {
	current atomic.Value // holds NumberingConfig
}

// NewNumberingConfigHolder loads numbering.yml from the standard locations.
func NewNumberingConfigHolder() (*NumberingConfigHolder, error) {
	return LoadNumberingConfig("/etc/ledgerly", ".")
}

// LoadNumberingConfig reads numbering.yml from the first matching path and
// keeps watching it. Missing files fall back to DefaultNumberingConfig.
func LoadNumberingConfig(paths ...string) (*NumberingConfigHolder, error) {
	v := viper.New()
	v.SetConfigName("numbering")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.SetEnvPrefix("LEDGERLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &NumberingConfigHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultNumberingConfig())
		return holder, nil
	}

	cfg, err := decodeNumberingConfig(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeNumberingConfig(v)
		if err != nil {
			log.Printf("[numbering-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[numbering-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticNumberingConfigHolder wraps a fixed config; used by tests and tools.
func NewStaticNumberingConfigHolder(cfg NumberingConfig) *NumberingConfigHolder {
	holder := &NumberingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *NumberingConfigHolder) Get() NumberingConfig {
	return h.current.Load().(NumberingConfig)
}

func decodeNumberingConfig(v *viper.Viper) (NumberingConfig, error) {
	cfg := DefaultNumberingConfig()
	var loaded NumberingConfig
	if err := v.UnmarshalKey("numbering", &loaded); err != nil {
		return NumberingConfig{}, err
	}
	for key, series := range loaded.Series {
		if series.Start == 0 {
			series.Start = 1
		}
		cfg.Series[strings.ToLower(key)] = series
	}
	if err := validateNumberingConfig(cfg); err != nil {
		return NumberingConfig{}, err
	}
	return cfg, nil
}

func validateNumberingConfig(cfg NumberingConfig) error {
	for key, series := range cfg.Series {
		if !strings.Contains(series.Template, "{SEQ") {
			return fmt.Errorf("numbering.series.%s.template must contain a {SEQ} token", key)
		}
		if series.Start < 1 {
			return fmt.Errorf("numbering.series.%s.start must be positive", key)
		}
	}
	return nil
}
