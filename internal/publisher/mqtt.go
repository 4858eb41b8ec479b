package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/shopspring/decimal"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/config"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/models"
)

// euiPlaces is the number of decimals kept in published kWh/m² values
const euiPlaces = 3

// Publisher sends stored simulation runs to MQTT and Home Assistant
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(cfg *config.Config) (*Publisher, error) {
	haCfg := cfg.HomeAssistant
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	var client mqtt.Client
	mqttCfg := cfg.MQTT
	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("isomodel")
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	if client == nil && !haCfg.Enabled {
		return nil, fmt.Errorf("neither MQTT nor Home Assistant publishing is enabled in config")
	}

	return newPublisher(client, cfg.GetTopicPrefix(), haCfg), nil
}

func newPublisher(client mqtt.Client, topicPrefix string, haCfg config.HAConfig) *Publisher {
	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		haConfig:    haCfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// RunPayload is the retained MQTT message describing one run
type RunPayload struct {
	RunID     string          `json:"run_id"`
	Building  string          `json:"building"`
	Method    string          `json:"method"`
	Station   string          `json:"station"`
	TotalEUI  decimal.Decimal `json:"total_eui"`
	CreatedAt string          `json:"created_at"`
	Periods   []PeriodPayload `json:"periods,omitempty"`
}

// PeriodPayload holds one period's rounded end uses
type PeriodPayload struct {
	Period  int                        `json:"period"`
	Total   decimal.Decimal            `json:"total"`
	EndUses map[string]decimal.Decimal `json:"end_uses"`
}

// HAPayload is the body of a Home Assistant state update
type HAPayload struct {
	State      string            `json:"state"`
	Attributes map[string]string `json:"attributes"`
}

func round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(euiPlaces)
}

// BuildPayload converts a stored run into its published form
func BuildPayload(run models.Run) RunPayload {
	payload := RunPayload{
		RunID:     run.ID,
		Building:  BuildingName(run.BuildingPath),
		Method:    run.Method,
		Station:   run.Station,
		TotalEUI:  round(run.TotalEUI),
		CreatedAt: run.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, p := range run.Periods {
		pp := PeriodPayload{Period: p.Period, Total: round(p.Total()), EndUses: make(map[string]decimal.Decimal, len(p.EndUses))}
		for name, v := range p.EndUses {
			pp.EndUses[name] = round(v)
		}
		payload.Periods = append(payload.Periods, pp)
	}
	sort.Slice(payload.Periods, func(i, j int) bool { return payload.Periods[i].Period < payload.Periods[j].Period })
	return payload
}

// BuildingName derives a topic-safe name from a building file path
func BuildingName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return strings.ToLower(name)
}

// Topic returns the MQTT topic a run is published to
func (p *Publisher) Topic(run models.Run) string {
	return fmt.Sprintf("%s/%s/%s", p.topicPrefix, BuildingName(run.BuildingPath), run.Method)
}

// Publish sends a run to every enabled destination
func (p *Publisher) Publish(run models.Run) error {
	if p.client != nil {
		if err := p.publishMQTT(run); err != nil {
			return err
		}
	}
	if p.haConfig.Enabled {
		if err := p.publishHA(run); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishMQTT(run models.Run) error {
	body, err := json.Marshal(BuildPayload(run))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(p.Topic(run), 1, true, body)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing run %s: timed out", run.ID)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing run %s: %w", run.ID, err)
	}
	return nil
}

// publishHA sets the configured entity's state to the run's total EUI
func (p *Publisher) publishHA(run models.Run) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimSuffix(p.haConfig.URL, "/"), p.haConfig.EntityID)

	payload := HAPayload{
		State: decimal.NewFromFloat(run.TotalEUI).StringFixed(2),
		Attributes: map[string]string{
			"unit_of_measurement": "kWh/m²",
			"building":            BuildingName(run.BuildingPath),
			"method":              run.Method,
			"run_id":              run.ID,
			"last_simulated":      run.CreatedAt.UTC().Format(time.RFC3339),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
