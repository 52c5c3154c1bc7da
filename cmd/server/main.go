package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solar_shading/internal/config"
	"solar_shading/internal/engine"
	"solar_shading/internal/metrics"
	"solar_shading/internal/states"
	"solar_shading/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment as-is")
	}

	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	tree, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded: %d windows, %d groups", len(tree.Windows), len(tree.Groups))

	// Live states: MQTT when a broker is configured, backed by a static
	// fallback layer.
	static := states.NewStatic(nil)
	provider := states.Provider(static)

	var mqttSrc *states.MQTTSource
	if tree.MQTT.Broker != "" {
		cfg := tree.MQTT
		if v := os.Getenv("MQTT_USERNAME"); v != "" {
			cfg.Username = v
		}
		if v := os.Getenv("MQTT_PASSWORD"); v != "" {
			cfg.Password = v
		}
		if cfg.ClientID == "" {
			cfg.ClientID = "solar-shading"
		}

		mqttSrc, err = states.ConnectMQTT(cfg, stateTopics(tree))
		if err != nil {
			log.Printf("MQTT source unavailable, continuing without live states: %v", err)
		} else {
			defer mqttSrc.Close()
			provider = states.Layered{mqttSrc, static}
		}
	}

	hub := ws.NewHub()
	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)

	callbacks := engine.MultiCallback{ws.NewBridge(hub), reg}
	if mqttSrc != nil && tree.MQTT.PublishPrefix != "" {
		callbacks = append(callbacks, &decisionPublisher{src: mqttSrc, prefix: tree.MQTT.PublishPrefix})
	}

	eng := engine.New(tree, provider, callbacks)
	eng.Start()
	log.Printf("Calculation engine started, interval %s", tree.Global.UpdateInterval())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/results", func(w http.ResponseWriter, r *http.Request) {
		batch, ok := eng.Latest()
		if !ok {
			http.Error(w, "no calculation has run yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(batch); err != nil {
			log.Printf("Error encoding results: %v", err)
		}
	})
	mux.Handle("/ws", ws.NewHandler(hub, eng))

	log.Printf("Starting server on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}

// stateTopics collects every state key the engine may read, for the MQTT
// subscription list.
func stateTopics(tree *config.Tree) []string {
	seen := make(map[string]bool)
	add := func(key string) {
		if key != "" {
			seen[key] = true
		}
	}

	refs := tree.Global.Sensors
	add(refs.SolarRadiation)
	add(refs.SunAzimuth)
	add(refs.SunElevation)
	add(refs.OutdoorTemp)
	add(refs.ForecastTemp)
	add(refs.WeatherWarning)
	add(tree.Global.IndoorSensor.Or(""))

	for _, g := range tree.Groups {
		add(g.IndoorSensor.Or(""))
	}
	for _, w := range tree.Windows {
		add(w.IndoorSensor.Or(""))
	}

	topics := make([]string, 0, len(seen))
	for t := range seen {
		topics = append(topics, t)
	}
	return topics
}

// decisionPublisher pushes per-window shading decisions back to the broker
// so cover automations can act on them.
type decisionPublisher struct {
	src    *states.MQTTSource
	prefix string
}

func (p *decisionPublisher) OnResults(batch engine.Batch) {
	for id, wr := range batch.Windows {
		payload := "off"
		if wr.ShadeRequired {
			payload = "on"
		}
		p.src.Publish(p.prefix+"/"+id+"/shade", payload)
		p.src.Publish(p.prefix+"/"+id+"/reason", wr.ShadeReason)
	}
}

func (p *decisionPublisher) OnState(engine.State) {}
