package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/comm"
	"github.com/robotalks/pt.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/pt.go/pkg/l1/comm/stream"
	"github.com/robotalks/pt.go/pkg/l1/comm/websocket"
)

// Config selects the L1 controller a client talks to.
type Config struct {
	Ref l1.ControllerRef `yaml:"ref"`

	// RegistryURL is either a registry, e.g. mqtt://host:port/topic-prefix,
	// or a controller accepting direct connections, e.g. tcp://host:port
	// or ws://host:port/l1.
	RegistryURL string `yaml:"registry"`

	// DiscoverTimeout bounds Discover. Zero means no limit.
	DiscoverTimeout time.Duration `yaml:"discover-timeout"`
}

var defaultConfig = Config{
	RegistryURL:     "mqtt://localhost:1883/robo/",
	DiscoverTimeout: 5 * time.Second,
}

func init() {
	for name, val := range map[string]*string{
		"ROBO_TYPE":         &defaultConfig.Ref.Type,
		"ROBO_ID":           &defaultConfig.Ref.ID,
		"ROBO_REGISTRY_URL": &defaultConfig.RegistryURL,
	} {
		if env := os.Getenv(name); env != "" {
			*val = env
		}
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "robot-type", defaultConfig.Ref.Type, "Robot type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "robot-id", defaultConfig.Ref.ID, "Robot ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "robot-reg", defaultConfig.RegistryURL, "Robot Registry URL.")
	flag.DurationVar(&defaultConfig.DiscoverTimeout, "robot-discover-timeout", defaultConfig.DiscoverTimeout, "Timeout for discovering robots.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector according to the scheme of RegistryURL.
func (c *Config) NewConnector() (l1.Connector, error) {
	u, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	var dialer comm.Dialer
	switch u.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.RegistryURL)
	case "tcp":
		dialer = stream.Dialer(u.Host)
	case "ws", "wss":
		dialer = websocket.Dialer(c.RegistryURL)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", u.Scheme)
	}
	info := l1.ControllerInfo{Ref: c.Ref}
	if !info.Ref.IsValid() {
		info.Ref = l1.ControllerRef{Type: "direct", ID: u.Host}
	}
	return &comm.DirectConnector{Dialer: dialer, Info: info}, nil
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

func (c *Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.DiscoverTimeout > 0 {
		return context.WithTimeout(ctx, c.DiscoverTimeout)
	}
	return context.WithCancel(ctx)
}

// Discover lists controllers accepted by filter. A nil filter accepts all.
func (c *Config) Discover(ctx context.Context, filter func(l1.ControllerInfo) bool) (l1.Connector, []l1.ControllerInfo, error) {
	connector, err := c.NewConnector()
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	infos, err := connector.Discover(ctx)
	if err != nil || filter == nil {
		return connector, infos, err
	}
	selected := infos[:0]
	for _, info := range infos {
		if filter(info) {
			selected = append(selected, info)
		}
	}
	return connector, selected, nil
}

// Connect connects to the controller named by Ref.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("robot type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}

// MustConnect connects to the controller and fails on error.
func (c *Config) MustConnect(ctx context.Context) l1.ControllerConn {
	conn, err := c.Connect(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}
