package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	fx "github.com/robotalks/pt.go/pkg/framework"
	"github.com/robotalks/pt.go/pkg/l1"
	env "github.com/robotalks/pt.go/pkg/l1/env/controller"
	"github.com/robotalks/pt.go/pkg/rotation"
	"github.com/robotalks/pt.go/pkg/taskctl"
)

var (
	configFile string
	interval   = time.Millisecond
)

// fileConfig is the layout of the -config file.
type fileConfig struct {
	Controller *env.Config      `yaml:"controller"`
	Rotation   *rotation.Config `yaml:"rotation"`
}

func init() {
	env.SetControllerType("gyro", l1.ControllerMeta{Description: "Gyroscope Rotation Reader"})
	env.SetupFlags()
	rotation.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file, overrides flags.")
	flag.DurationVar(&interval, "interval", interval, "Loop interval.")
}

func main() {
	flag.Parse()

	envConf, rotConf := env.NewConfig(), rotation.NewConfig()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			log.Fatalln(err)
		}
		if err := yaml.Unmarshal(data, &fileConfig{Controller: envConf, Rotation: rotConf}); err != nil {
			log.Fatalln(err)
		}
	}

	env := envConf.MustNewEnv()
	ctl := rotConf.MustNewDeviceController(env.Registrar)
	loop := fx.NewLoop()
	loop.Interval = interval
	loop.Add(env, ctl)
	loop.Add(taskctl.New(env.Registrar, loop.Tasks(fx.PrLvSense))).RunOrFail()
}
