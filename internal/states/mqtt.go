package states

import (
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"solar_shading/internal/config"
)

// MQTTSource subscribes to a set of topics on a broker and keeps the latest
// payload per topic. It implements Provider with the topic as the state key.
type MQTTSource struct {
	mu     sync.RWMutex
	values map[string]string
	client mqtt.Client
}

// ConnectMQTT connects to the broker and subscribes to topics. The returned
// source starts empty; values appear as retained or fresh messages arrive.
func ConnectMQTT(cfg config.MQTTConfig, topics []string) (*MQTTSource, error) {
	src := &MQTTSource{values: make(map[string]string)}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("Connected to MQTT broker at %s", cfg.Broker)
		for _, topic := range topics {
			topic := topic
			token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
				src.store(msg.Topic(), string(msg.Payload()))
			})
			if token.Wait() && token.Error() != nil {
				log.Printf("MQTT subscribe %s: %v", topic, token.Error())
			}
		}
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", cfg.Broker, token.Error())
	}
	src.client = client
	return src, nil
}

func (s *MQTTSource) store(topic, payload string) {
	s.mu.Lock()
	s.values[topic] = payload
	s.mu.Unlock()
}

func (s *MQTTSource) Value(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Publish sends a retained message, used for pushing shading decisions back
// to the broker. Publish is a no-op on a nil source.
func (s *MQTTSource) Publish(topic, payload string) {
	if s == nil {
		return
	}
	token := s.client.Publish(topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("MQTT publish %s: %v", topic, token.Error())
	}
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	if s == nil || s.client == nil {
		return
	}
	s.client.Disconnect(250)
}
