package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/serialcmd/pkg/notify/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/serialcmd/"
)

func init() {
	if val := os.Getenv("SERIALCMD_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if !strings.HasSuffix(topic, "/events") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		var ev mqtt.EventPayload
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Printf("%s: bad event: %v", topic, err)
			return
		}
		switch {
		case ev.Error != "":
			log.Printf("%s: [%s] %s %s (%s) %s", topic, ev.Kind, ev.Endpoint, ev.Command, ev.Reason, ev.Error)
		case ev.Text != "":
			log.Printf("%s: [%s] %s %s %q", topic, ev.Kind, ev.Endpoint, ev.Command, ev.Text)
		default:
			log.Printf("%s: [%s] %s %s", topic, ev.Kind, ev.Endpoint, ev.Command)
		}
	}))
	if err := q.Connect(context.Background()); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
