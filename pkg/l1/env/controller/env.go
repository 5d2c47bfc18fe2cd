package controller

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/comm"
	"github.com/robotalks/pt.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/pt.go/pkg/l1/comm/stream"
	"github.com/robotalks/pt.go/pkg/l1/comm/websocket"
	"github.com/robotalks/pt.go/pkg/l1/env"
)

// Config provides common options to setup an env for L1 controllers.
type Config struct {
	Info l1.ControllerInfo `yaml:"info"`

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt"`

	// Listen is the TCP address accepting direct L2 connections.
	Listen string `yaml:"listen"`
	// WSListen is the TCP address accepting websocket L2 connections.
	WSListen string `yaml:"ws_listen"`
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/robo/",
}

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ROBO_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("ROBO_WS_LISTEN"); val != "" {
		defaultConfig.WSListen = val
	}
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "TCP address for direct connections")
	flag.StringVar(&defaultConfig.WSListen, "ws-listen", defaultConfig.WSListen, "TCP address for websocket connections")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the controller.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the env for L1 controllers.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Parse overrides the config with YAML.
func (c *Config) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("robot type and id must be specified")
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.Listen != "" {
		ln, err := stream.Listen(c.Listen)
		if err != nil {
			return nil, fmt.Errorf("listen %s error: %v", c.Listen, err)
		}
		env.Registrar.Add(comm.NewListener(ln))
		env.RegistryURLs = append(env.RegistryURLs, "tcp://"+ln.Addr().String())
	}
	if c.WSListen != "" {
		ln, err := websocket.Listen(c.WSListen, websocket.DefaultPath)
		if err != nil {
			return nil, fmt.Errorf("websocket listen %s error: %v", c.WSListen, err)
		}
		env.Registrar.Add(comm.NewListener(ln))
		env.RegistryURLs = append(env.RegistryURLs, "ws://"+ln.Addr().String()+websocket.DefaultPath)
	}
	if len(env.Registrar.Registrars) == 0 {
		return nil, fmt.Errorf("at least one registrar is required")
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
