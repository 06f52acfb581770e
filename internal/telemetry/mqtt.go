// Package telemetry publishes optional session and broadcast health
// metrics to an MQTT broker for external monitoring.
package telemetry

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/util"
)

// MQTT topic names this handler publishes to.
const (
	TopicStatus   = "rhxd/status"
	TopicShutdown = "rhxd/shutdown"
)

// publishInterval is how often the session/broadcast snapshot is
// published while connected.
const publishInterval = 30 * time.Second

// MQTTHandler owns the MQTT client connection and periodically publishes
// a status snapshot. Grounded on the teacher's MQTTHandler (client
// options, TLS/mTLS setup, connect/publish/disconnect lifecycle),
// re-themed from EventBus-driven game telemetry to a ticker-driven
// session/broadcast snapshot since this domain has no generic event bus.
type MQTTHandler struct {
	cfg      *config.Config
	registry *session.Registry
	hub      *broadcast.Hub
	client   mqtt.Client
	metadata map[string]interface{}
}

// NewMQTTHandler creates an MQTTHandler if MQTT telemetry is enabled in
// cfg. It returns an error if telemetry is disabled so callers can skip
// launching the handler entirely.
func NewMQTTHandler(cfg *config.Config, registry *session.Registry, hub *broadcast.Hub) (*MQTTHandler, error) {
	snap := cfg.Snapshot()
	mqttCfg := snap.MQTT
	if !mqttCfg.Enabled {
		return nil, fmt.Errorf("MQTT telemetry is disabled")
	}

	sysInfo := util.GetSystemInfo()
	metadata := map[string]interface{}{
		"hostname":  sysInfo.Hostname,
		"platform":  sysInfo.Platform,
		"cpu_model": sysInfo.CPUModel,
		"cpu_cores": sysInfo.CPUCores,
		"memory_mb": sysInfo.TotalMemory,
	}

	h := &MQTTHandler{cfg: cfg, registry: registry, hub: hub, metadata: metadata}

	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if mqttCfg.UseTLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, mqttCfg.BrokerURL, mqttCfg.Port))

	if mqttCfg.ClientID != "" {
		opts.SetClientID(mqttCfg.ClientID)
	} else {
		opts.SetClientID(fmt.Sprintf("rhxd-%s", sysInfo.Hostname))
	}

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(false)

	if mqttCfg.UseTLS {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if mqttCfg.CertFile != "" && mqttCfg.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(mqttCfg.CertFile, mqttCfg.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load MQTT TLS certificate: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
		opts.SetTLSConfig(tlsConfig)
	}

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Msg("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	})

	h.client = mqtt.NewClient(opts)
	return h, nil
}

// Start connects to the broker and publishes a status snapshot on a
// fixed interval until ctx is cancelled, then publishes a shutdown
// notice and disconnects.
func (h *MQTTHandler) Start(ctx context.Context) error {
	mqttCfg := h.cfg.Snapshot().MQTT
	log.Info().Str("broker", mqttCfg.BrokerURL).Int("port", mqttCfg.Port).Msg("connecting to MQTT broker")

	token := h.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect failed: %w", token.Error())
	}

	ticker := time.NewTicker(publishInterval)
	defer ticker.Stop()

	h.publishStatus()
	for {
		select {
		case <-ctx.Done():
			h.publishShutdown()
			h.client.Disconnect(5000)
			log.Info().Msg("MQTT disconnected")
			return nil
		case <-ticker.C:
			h.publishStatus()
		}
	}
}

// publishStatus publishes the current session count and cumulative
// dropped-chat counter.
func (h *MQTTHandler) publishStatus() {
	h.publish(TopicStatus, map[string]interface{}{
		"active_sessions": h.registry.Count(),
		"chat_dropped":    h.hub.ChatDropped(),
	})
}

func (h *MQTTHandler) publishShutdown() {
	h.publish(TopicShutdown, map[string]interface{}{"event": "shutdown"})
}

// publish sends a JSON message combining the handler's static metadata
// with payload.
func (h *MQTTHandler) publish(topic string, payload map[string]interface{}) {
	if !h.client.IsConnected() {
		return
	}

	msg := make(map[string]interface{}, len(h.metadata)+2)
	for k, v := range h.metadata {
		msg[k] = v
	}
	for k, v := range payload {
		msg[k] = v
	}
	msg["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(msg)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to marshal MQTT message")
		return
	}

	token := h.client.Publish(topic, 1, false, data)
	go func() {
		token.Wait()
		if token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", topic).Msg("MQTT publish failed")
		}
	}()
}
