package rotation

import (
	"flag"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/pt.go/pkg/sensor/gyro"
)

// Config defines the parameters of the Reader.
type Config struct {
	// Scale is the gyroscope range, e.g. 250dps.
	Scale string `yaml:"scale"`
	// Window is the number of samples averaged.
	Window int `yaml:"window"`
	// FullScale is the rotation in dps lighting Leds LEDs.
	FullScale float32 `yaml:"full_scale"`
	// Leds is the number of LEDs lit at FullScale.
	Leds int `yaml:"leds"`
	// Period is the interval between readings.
	Period time.Duration `yaml:"period"`
	// Device is the serial device of the L0 firmware. The gyroscope is
	// simulated if empty.
	Device string `yaml:"device"`
	// Timeout bounds the wait for a reply from the gyroscope.
	Timeout time.Duration `yaml:"timeout"`
}

var defaultConfig = DefaultConfig()

// DefaultConfig returns the default config.
func DefaultConfig() Config {
	return Config{
		Scale:     gyro.Dps250.String(),
		Window:    25,
		FullScale: 200,
		Leds:      5,
		Period:    5 * time.Millisecond,
		Timeout:   gyro.DefaultTimeout,
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Scale, "scale", defaultConfig.Scale, "Gyroscope range: 250dps, 500dps or 2000dps.")
	flag.IntVar(&defaultConfig.Window, "window", defaultConfig.Window, "Number of samples averaged.")
	flag.DurationVar(&defaultConfig.Period, "period", defaultConfig.Period, "Interval between readings.")
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "L0 serial device, simulated if empty.")
	flag.DurationVar(&defaultConfig.Timeout, "gyro-timeout", defaultConfig.Timeout, "Timeout waiting for gyroscope replies.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ParseConfig parses YAML on top of the default config.
func ParseConfig(data []byte) (Config, error) {
	conf := DefaultConfig()
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

// Validate checks the config.
func (c Config) Validate() error {
	if _, err := gyro.ParseScale(c.Scale); err != nil {
		return err
	}
	if c.Window <= 0 {
		return fmt.Errorf("invalid window %d", c.Window)
	}
	if c.FullScale <= 0 {
		return fmt.Errorf("invalid full scale %v", c.FullScale)
	}
	if c.Leds < 0 || c.Leds > 31 {
		return fmt.Errorf("invalid number of leds %d", c.Leds)
	}
	// the reader only yields while waiting for the period to expire.
	if c.Period <= 0 {
		return fmt.Errorf("invalid period %v", c.Period)
	}
	return nil
}
