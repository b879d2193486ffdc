// Package publish sends current conditions to an MQTT broker so other
// systems (home automation, displays) can pick them up.
package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/icodeforyou/weatherboard-go/types"
)

type Publisher struct {
	client mqtt.Client
	logger *slog.Logger
	prefix string
}

type conditionsPayload struct {
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Time          int64    `json:"time"`
	Temperature   float64  `json:"temperature"`
	FeelsLike     float64  `json:"feels_like"`
	Humidity      float64  `json:"humidity"`
	WindSpeed     float64  `json:"wind_speed"`
	Precipitation *float64 `json:"precipitation"`
	Code          string   `json:"code"`
	Description   string   `json:"description"`
}

func New(broker string, port int16, username string, password string, prefix string) *Publisher {
	logger := slog.Default().With("module", "publish")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID(fmt.Sprintf("weatherboard-%d", time.Now().Unix()))
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected", slog.String("broker", broker))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqttLogger := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLogger, slog.LevelWarn)

	return newPublisher(mqtt.NewClient(opts), prefix)
}

func newPublisher(client mqtt.Client, prefix string) *Publisher {
	return &Publisher{
		client: client,
		logger: slog.Default().With("module", "publish"),
		prefix: strings.Trim(prefix, "/"),
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.logger.Info("disconnecting MQTT client")
	p.client.Disconnect(250)
}

// PublishConditions sends c as a retained JSON message to
// <prefix>/<city>/current. Values are metric.
func (p *Publisher) PublishConditions(city string, c types.Conditions) error {
	var precip *float64
	if c.Precipitation.IsValid() {
		v := c.Precipitation.Value()
		precip = &v
	}

	payload, err := json.Marshal(conditionsPayload{
		City:          c.City,
		Country:       c.Country,
		Time:          c.Time.Unix(),
		Temperature:   c.Temperature,
		FeelsLike:     c.FeelsLike,
		Humidity:      c.Humidity,
		WindSpeed:     c.WindSpeed,
		Precipitation: precip,
		Code:          c.Code,
		Description:   c.Description,
	})
	if err != nil {
		return fmt.Errorf("marshalling conditions for %s: %w", city, err)
	}

	topic := p.Topic(city)
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout when publishing to %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("error when publishing to %s: %w", topic, token.Error())
	}

	p.logger.Debug("published conditions", slog.String("topic", topic))
	return nil
}

// Topic is the topic conditions for city are published to. The city is
// lower cased and everything but letters and digits becomes "_".
func (p *Publisher) Topic(city string) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, strings.TrimSpace(city))
	return fmt.Sprintf("%s/%s/current", p.prefix, slug)
}
