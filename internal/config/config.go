// Package config loads the daemon configuration from defaults, an optional
// YAML file, GAMEPADBROWSE_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/soar/gamepadbrowse/internal/actions"
	"github.com/soar/gamepadbrowse/internal/gamepad"
	"github.com/soar/gamepadbrowse/internal/input"
	"github.com/soar/gamepadbrowse/internal/logging"
	"github.com/soar/gamepadbrowse/internal/loop"
)

// EnvPrefix prefixes every environment override, e.g. GAMEPADBROWSE_SERVER_ADDR.
const EnvPrefix = "GAMEPADBROWSE"

// Device sources.
const (
	SourceSDL  = "sdl"
	SourceGPIO = "gpio"
)

// Config is the top-level configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Device      DeviceConfig      `mapstructure:"device" yaml:"device"`
	Input       InputConfig       `mapstructure:"input" yaml:"input"`
	Actions     ActionsConfig     `mapstructure:"actions" yaml:"actions"`
	Loop        LoopConfig        `mapstructure:"loop" yaml:"loop"`
	Coordinator CoordinatorConfig `mapstructure:"coordinator" yaml:"coordinator"`
	MQTT        MQTTConfig        `mapstructure:"mqtt" yaml:"mqtt"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Tray        TrayConfig        `mapstructure:"tray" yaml:"tray"`
	Stats       StatsConfig       `mapstructure:"stats" yaml:"stats"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type DeviceConfig struct {
	Source string     `mapstructure:"source" yaml:"source"` // "sdl" or "gpio"
	PollHz int        `mapstructure:"poll_hz" yaml:"poll_hz"`
	GPIO   GPIOConfig `mapstructure:"gpio" yaml:"gpio"`
}

// GPIOConfig maps symbolic button names to line offsets on Chip.
type GPIOConfig struct {
	Chip string         `mapstructure:"chip" yaml:"chip"`
	Pins map[string]int `mapstructure:"pins" yaml:"pins,omitempty"`
}

type InputConfig struct {
	Deadzone      float64       `mapstructure:"deadzone" yaml:"deadzone"`
	Epsilon       float64       `mapstructure:"epsilon" yaml:"epsilon"`
	Smoothing     float64       `mapstructure:"smoothing" yaml:"smoothing"`
	AxisSmoothing []float64     `mapstructure:"axis_smoothing" yaml:"axis_smoothing,omitempty"`
	Hold          time.Duration `mapstructure:"hold" yaml:"hold"`
}

type ActionsConfig struct {
	ScrollExponent float64       `mapstructure:"scroll_exponent" yaml:"scroll_exponent"`
	CursorExponent float64       `mapstructure:"cursor_exponent" yaml:"cursor_exponent"`
	Cooldown       time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
	PointerHide    time.Duration `mapstructure:"pointer_hide" yaml:"pointer_hide"`
}

type LoopConfig struct {
	Quiescent time.Duration `mapstructure:"quiescent" yaml:"quiescent"`
}

// CoordinatorConfig selects the tab coordinator. An empty URL runs it
// in-process against the hub's page clients.
type CoordinatorConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MQTTConfig enables the action relay when Broker is set.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker" yaml:"broker"`
	Topic    string `mapstructure:"topic" yaml:"topic"`
	ClientID string `mapstructure:"client_id" yaml:"client_id"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type TrayConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type StatsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// Default returns a fully populated Config.
func Default() Config {
	ac := actions.DefaultConfig()
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Device: DeviceConfig{
			Source: SourceSDL,
			PollHz: 60,
			GPIO:   GPIOConfig{Chip: "gpiochip0"},
		},
		Input: InputConfig{
			Deadzone:  ac.Deadzone,
			Epsilon:   input.DefaultEpsilon,
			Smoothing: input.DefaultSmoothing,
			Hold:      input.DefaultHold,
		},
		Actions: ActionsConfig{
			ScrollExponent: ac.ScrollExponent,
			CursorExponent: ac.CursorExponent,
			Cooldown:       ac.Cooldown,
			PointerHide:    ac.PointerHide,
		},
		Loop:        LoopConfig{Quiescent: loop.DefaultQuiescent},
		Coordinator: CoordinatorConfig{Timeout: ac.Timeout},
		MQTT: MQTTConfig{
			Topic:    "gamepadbrowse/actions",
			ClientID: "gamepadbrowse",
		},
		Logging: LoggingConfig{Level: "info"},
		Tray:    TrayConfig{Enabled: runtime.GOOS == "windows"},
		Stats:   StatsConfig{Addr: "localhost:18066"},
	}
}

// Options are the command-line switches that are not configuration keys.
type Options struct {
	File        string
	PrintConfig bool
}

// flag name -> config key
var flagKeys = map[string]string{
	"addr":            "server.addr",
	"source":          "device.source",
	"poll-hz":         "device.poll_hz",
	"gpio-chip":       "device.gpio.chip",
	"deadzone":        "input.deadzone",
	"epsilon":         "input.epsilon",
	"smoothing":       "input.smoothing",
	"hold":            "input.hold",
	"scroll-exponent": "actions.scroll_exponent",
	"cursor-exponent": "actions.cursor_exponent",
	"cooldown":        "actions.cooldown",
	"pointer-hide":    "actions.pointer_hide",
	"quiescent":       "loop.quiescent",
	"coordinator":     "coordinator.url",
	"timeout":         "coordinator.timeout",
	"mqtt-broker":     "mqtt.broker",
	"mqtt-topic":      "mqtt.topic",
	"log-level":       "logging.level",
	"tray":            "tray.enabled",
	"stats":           "stats.enabled",
	"stats-addr":      "stats.addr",
}

func newFlagSet(name string, d Config) (*pflag.FlagSet, *Options) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	opts := &Options{}
	fs.StringVarP(&opts.File, "config", "c", "", "path to a YAML config file")
	fs.BoolVar(&opts.PrintConfig, "print-config", false, "print the effective config and exit")

	fs.String("addr", d.Server.Addr, "HTTP listen address")
	fs.String("source", d.Device.Source, "device source (sdl|gpio)")
	fs.Int("poll-hz", d.Device.PollHz, "sampling rate in Hz")
	fs.String("gpio-chip", d.Device.GPIO.Chip, "GPIO chip for the gpio source")
	fs.Float64("deadzone", d.Input.Deadzone, "axis deadzone")
	fs.Float64("epsilon", d.Input.Epsilon, "calibration drift threshold")
	fs.Float64("smoothing", d.Input.Smoothing, "rolling average weight of the newest sample")
	fs.Duration("hold", d.Input.Hold, "button hold window")
	fs.Float64("scroll-exponent", d.Actions.ScrollExponent, "scroll power curve exponent")
	fs.Float64("cursor-exponent", d.Actions.CursorExponent, "pointer power curve exponent")
	fs.Duration("cooldown", d.Actions.Cooldown, "debounce window for navigation actions")
	fs.Duration("pointer-hide", d.Actions.PointerHide, "hide the pointer after this much idle time")
	fs.Duration("quiescent", d.Loop.Quiescent, "pause after a navigation action")
	fs.String("coordinator", d.Coordinator.URL, "remote coordinator websocket URL (empty runs in-process)")
	fs.Duration("timeout", d.Coordinator.Timeout, "coordinator request timeout")
	fs.String("mqtt-broker", d.MQTT.Broker, "MQTT broker URL (empty disables the relay)")
	fs.String("mqtt-topic", d.MQTT.Topic, "MQTT topic for fired actions")
	fs.String("log-level", d.Logging.Level, "log level (debug|info|warn|error)")
	fs.Bool("tray", d.Tray.Enabled, "show the system tray icon")
	fs.Bool("stats", d.Stats.Enabled, "serve runtime statistics")
	fs.String("stats-addr", d.Stats.Addr, "runtime statistics listen address")
	return fs, opts
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("device.source", d.Device.Source)
	v.SetDefault("device.poll_hz", d.Device.PollHz)
	v.SetDefault("device.gpio.chip", d.Device.GPIO.Chip)
	v.SetDefault("device.gpio.pins", map[string]int{})
	v.SetDefault("input.deadzone", d.Input.Deadzone)
	v.SetDefault("input.epsilon", d.Input.Epsilon)
	v.SetDefault("input.smoothing", d.Input.Smoothing)
	v.SetDefault("input.axis_smoothing", []float64{})
	v.SetDefault("input.hold", d.Input.Hold)
	v.SetDefault("actions.scroll_exponent", d.Actions.ScrollExponent)
	v.SetDefault("actions.cursor_exponent", d.Actions.CursorExponent)
	v.SetDefault("actions.cooldown", d.Actions.Cooldown)
	v.SetDefault("actions.pointer_hide", d.Actions.PointerHide)
	v.SetDefault("loop.quiescent", d.Loop.Quiescent)
	v.SetDefault("coordinator.url", d.Coordinator.URL)
	v.SetDefault("coordinator.timeout", d.Coordinator.Timeout)
	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.topic", d.MQTT.Topic)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("tray.enabled", d.Tray.Enabled)
	v.SetDefault("stats.enabled", d.Stats.Enabled)
	v.SetDefault("stats.addr", d.Stats.Addr)
}

// Load parses args (without the program name) and returns the validated
// configuration. pflag.ErrHelp is returned as is when -h was given.
func Load(args []string) (Config, Options, error) {
	d := Default()
	fs, opts := newFlagSet("gamepadbrowse", d)
	if err := fs.Parse(args); err != nil {
		return Config{}, Options{}, err
	}

	v := viper.New()
	setDefaults(v, d)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return Config{}, Options{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, Options{}, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Options{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, Options{}, err
	}
	return cfg, *opts, nil
}

// Validate checks config invariants and returns a user-friendly error.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}

	switch c.Device.Source {
	case SourceSDL:
	case SourceGPIO:
		if c.Device.GPIO.Chip == "" {
			return errors.New("device.gpio.chip must not be empty for the gpio source")
		}
		if len(c.Device.GPIO.Pins) == 0 {
			return errors.New("device.gpio.pins must map at least one button for the gpio source")
		}
		for name, pin := range c.Device.GPIO.Pins {
			if _, ok := gamepad.ParseButton(name); !ok {
				return fmt.Errorf("device.gpio.pins: unknown button %q", name)
			}
			if pin < 0 {
				return fmt.Errorf("device.gpio.pins.%s must be >= 0", name)
			}
		}
	default:
		return fmt.Errorf("device.source must be %q or %q", SourceSDL, SourceGPIO)
	}
	if c.Device.PollHz <= 0 || c.Device.PollHz > 1000 {
		return errors.New("device.poll_hz must be between 1 and 1000")
	}

	if c.Input.Deadzone < 0 || c.Input.Deadzone >= 1 {
		return errors.New("input.deadzone must be in [0, 1)")
	}
	if c.Input.Epsilon < 0 {
		return errors.New("input.epsilon must be >= 0")
	}
	if c.Input.Smoothing <= 0 || c.Input.Smoothing > 1 {
		return errors.New("input.smoothing must be in (0, 1]")
	}
	for i, w := range c.Input.AxisSmoothing {
		if w < 0 || w > 1 {
			return fmt.Errorf("input.axis_smoothing[%d] must be in [0, 1]", i)
		}
	}
	if c.Input.Hold < 0 {
		return errors.New("input.hold must be >= 0")
	}

	if c.Actions.ScrollExponent <= 0 {
		return errors.New("actions.scroll_exponent must be > 0")
	}
	if c.Actions.CursorExponent <= 0 {
		return errors.New("actions.cursor_exponent must be > 0")
	}
	if c.Actions.Cooldown < 0 {
		return errors.New("actions.cooldown must be >= 0")
	}
	if c.Actions.PointerHide < 0 {
		return errors.New("actions.pointer_hide must be >= 0")
	}

	if c.Loop.Quiescent < 0 {
		return errors.New("loop.quiescent must be >= 0")
	}
	if c.Coordinator.Timeout <= 0 {
		return errors.New("coordinator.timeout must be > 0")
	}
	if c.Coordinator.URL != "" && !strings.HasPrefix(c.Coordinator.URL, "ws://") && !strings.HasPrefix(c.Coordinator.URL, "wss://") {
		return errors.New("coordinator.url must be a ws:// or wss:// URL")
	}

	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return errors.New("mqtt.broker is set but mqtt.topic is empty")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	if c.Stats.Enabled && c.Stats.Addr == "" {
		return errors.New("stats.enabled is true but stats.addr is empty")
	}
	return nil
}

// Interval is the sampling period derived from device.poll_hz.
func (c *Config) Interval() time.Duration {
	if c.Device.PollHz <= 0 {
		return loop.DefaultInterval
	}
	return time.Second / time.Duration(c.Device.PollHz)
}

// ToInputConfig converts the input section for the frame processor.
func (c *Config) ToInputConfig() input.Config {
	return input.Config{
		Epsilon:       c.Input.Epsilon,
		Smoothing:     c.Input.Smoothing,
		AxisSmoothing: c.Input.AxisSmoothing,
		Hold:          c.Input.Hold,
	}
}

// ToActionsConfig converts the actions section for the action layer.
func (c *Config) ToActionsConfig() actions.Config {
	return actions.Config{
		Deadzone:       c.Input.Deadzone,
		ScrollExponent: c.Actions.ScrollExponent,
		CursorExponent: c.Actions.CursorExponent,
		Cooldown:       c.Actions.Cooldown,
		PointerHide:    c.Actions.PointerHide,
		Timeout:        c.Coordinator.Timeout,
	}
}

// Dump writes cfg as YAML.
func Dump(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
