package middleware

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

var brokerURL = "tcp://0.0.0.0:1883" // Default MQTT broker URL

// MQTT connection handler
var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("Connected to MQTT broker")
}

// MQTT connection lost handler
var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Initialize MQTT client
func CreateMQTTClient(clientName string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientName)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}

	log.Info().Str("broker", brokerURL).Msg("MQTT client initialized successfully")
	return client, nil
}

// SetBrokerURL allows configuration of the MQTT broker URL
func SetBrokerURL(url string) {
	brokerURL = url
}

// TelemetryPublisher forwards recorded displays and check-ins to the broker
// for downstream analytics consumers. Nothing is sent to screens.
type TelemetryPublisher struct {
	client  mqtt.Client
	timeout time.Duration
}

func NewTelemetryPublisher(client mqtt.Client) *TelemetryPublisher {
	return &TelemetryPublisher{client: client, timeout: 2 * time.Second}
}

type displayMessage struct {
	ScreenID int                  `json:"screen_id"`
	Events   []model.DisplayEvent `json:"events"`
}

type checkInMessage struct {
	ScreenID    int    `json:"screen_id"`
	CheckedInAt string `json:"checked_in_at"`
}

func displaysTopic(screenID int) string {
	return fmt.Sprintf("signage/screens/%d/displays", screenID)
}

func checkInTopic(screenID int) string {
	return fmt.Sprintf("signage/screens/%d/checkin", screenID)
}

func (p *TelemetryPublisher) PublishDisplays(screenID int, events []model.DisplayEvent) error {
	payload, err := json.Marshal(displayMessage{ScreenID: screenID, Events: events})
	if err != nil {
		return err
	}
	return p.publish(displaysTopic(screenID), payload)
}

func (p *TelemetryPublisher) PublishCheckIn(screenID int, at time.Time) error {
	payload, err := json.Marshal(checkInMessage{ScreenID: screenID, CheckedInAt: at.UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	return p.publish(checkInTopic(screenID), payload)
}

func (p *TelemetryPublisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %v", topic, err)
	}
	log.Debug().Str("topic", topic).Int("bytes", len(payload)).Msg("telemetry published")
	return nil
}

// Close disconnects the underlying client.
func (p *TelemetryPublisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		log.Info().Msg("MQTT client disconnected")
	}
}
