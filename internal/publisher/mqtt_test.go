package publisher

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Argonne-National-Laboratory/ISOmodel/internal/config"
	"github.com/Argonne-National-Laboratory/ISOmodel/pkg/models"
)

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes; other mqtt.Client methods are not used
type fakeClient struct {
	mqtt.Client
	messages []published
	err      error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, published{topic, qos, retained, payload.([]byte)})
	return &doneToken{err: c.err}
}

func (c *fakeClient) IsConnected() bool { return false }

func sampleRun() models.Run {
	return models.Run{
		ID:           "8c5f1a7e-2f55-4c1b-9a0a-6c1b8f0d2e11",
		BuildingPath: "/data/buildings/Small Office.ism",
		Method:       models.MethodMonthly,
		Station:      "725300",
		TotalEUI:     181.23456,
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Periods: []models.PeriodResult{
			{Period: 2, EndUses: map[string]float64{"GasHeat": 33.33333}},
			{Period: 1, EndUses: map[string]float64{"GasHeat": 40.1, "ElecCool": 0.0004}},
		},
	}
}

func TestBuildingName(t *testing.T) {
	assert.Equal(t, "small_office", BuildingName("/data/buildings/Small Office.ism"))
	assert.Equal(t, "test_bldg", BuildingName("test_bldg.yaml"))
	assert.Equal(t, "a-b", BuildingName("a-b"))
}

func TestBuildPayload(t *testing.T) {
	payload := BuildPayload(sampleRun())

	assert.Equal(t, "small_office", payload.Building)
	assert.True(t, decimal.RequireFromString("181.235").Equal(payload.TotalEUI))
	require.Len(t, payload.Periods, 2)
	assert.Equal(t, 1, payload.Periods[0].Period, "periods are sorted")
	assert.True(t, decimal.RequireFromString("40.1").Equal(payload.Periods[0].EndUses["GasHeat"]))
	assert.True(t, payload.Periods[0].EndUses["ElecCool"].IsZero())
	assert.True(t, decimal.RequireFromString("33.333").Equal(payload.Periods[1].Total))
}

func TestPublishMQTT(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, "isomodel", config.HAConfig{})

	require.NoError(t, p.Publish(sampleRun()))
	require.Len(t, client.messages, 1)

	msg := client.messages[0]
	assert.Equal(t, "isomodel/small_office/monthly", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, "8c5f1a7e-2f55-4c1b-9a0a-6c1b8f0d2e11", decoded["run_id"])
	assert.Equal(t, "181.235", decoded["total_eui"])

	client.err = errors.New("broker gone")
	assert.ErrorContains(t, p.Publish(sampleRun()), "broker gone")
}

func TestPublishHA(t *testing.T) {
	var gotPath, gotAuth string
	var got HAPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newPublisher(nil, "isomodel", config.HAConfig{
		Enabled:  true,
		URL:      srv.URL + "/",
		Token:    "secret",
		EntityID: "sensor.office_eui",
	})
	require.NoError(t, p.Publish(sampleRun()))

	assert.Equal(t, "/api/states/sensor.office_eui", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "181.23", got.State)
	assert.Equal(t, "small_office", got.Attributes["building"])
	assert.Equal(t, "kWh/m²", got.Attributes["unit_of_measurement"])
}

func TestPublishHAError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newPublisher(nil, "isomodel", config.HAConfig{Enabled: true, URL: srv.URL, Token: "x", EntityID: "sensor.x"})
	err := p.Publish(sampleRun())
	assert.ErrorContains(t, err, "status 401")
}

func TestNewValidation(t *testing.T) {
	_, err := New(&config.Config{})
	assert.ErrorContains(t, err, "neither MQTT nor Home Assistant")

	_, err = New(&config.Config{HomeAssistant: config.HAConfig{Enabled: true, URL: "http://ha"}})
	assert.ErrorContains(t, err, "token is required")

	_, err = New(&config.Config{MQTT: config.MQTTConfig{Enabled: true}})
	assert.ErrorContains(t, err, "broker address is required")
}
