package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/pt.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/pt.go/pkg/l1/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/robo/"
	topic   = "#"
)

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic filter under the prefix, e.g. gyro/+/msg.")
}

func describe(topic string, payload []byte) string {
	if strings.HasSuffix(topic, "/meta") {
		info, ok := mqtt.ParseMeta(topic, payload)
		if !ok {
			return "offline"
		}
		return "online " + info.Meta.Description
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return "bad message: " + err.Error()
	}
	msg, err := typed.Decode()
	if err != nil {
		return "decode error: " + err.Error()
	}
	return fmt.Sprintf("#%d [%s] %s", typed.Sequence,
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.(msgs.SerializableMessage).Serializable().String())
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub(topic, mqtt.Handler(func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, describe(topic, payload))
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
