// Simulator publishes synthetic ride-host traffic over MQTT: a bike
// roster, an active profile, ride-state transitions and a cumulative
// descent stream. Useful for exercising the tracker end to end without
// a head unit.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/shock-tracker/internal/host"
)

var bikeNames = []string{
	"Enduro", "Trail Hardtail", "DH Rig", "Slopestyle", "XC Racer",
}

type simBike struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func publish(client paho.Client, topic string, retained bool, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Failed to marshal payload")
		return
	}
	token := client.Publish(topic, 0, retained, data)
	if !token.WaitTimeout(5 * time.Second) {
		log.WithField("topic", topic).Error("Publish timeout")
		return
	}
	if err := token.Error(); err != nil {
		log.WithError(err).WithField("topic", topic).Error("Publish failed")
	}
}

func publishRideState(client paho.Client, state host.RideState) {
	publish(client, host.TopicRideState, false, map[string]string{"state": string(state)})
	log.WithField("state", state).Info("Published ride state")
}

// simulateRide runs one recording window and streams cumulative descent.
func simulateRide(client paho.Client, rideMinutes int, tick time.Duration, descentPerTick float64, withTelemetry bool) {
	publishRideState(client, host.StateRecording)

	ticks := int(time.Duration(rideMinutes) * time.Minute / tick)
	descent := 0.0
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for i := 0; i < ticks; i++ {
		<-ticker.C

		if !withTelemetry {
			// Barometer never locks on; the tracker falls back to
			// its ride-time estimate.
			publish(client, host.TopicDescent, false, host.DescentSample{State: host.StreamSearching})
			continue
		}

		// Climbs produce no elevation loss; descents do.
		if rand.Float64() < 0.35 {
			descent += descentPerTick * (0.5 + rand.Float64())
		}
		publish(client, host.TopicDescent, false, host.DescentSample{
			State:  host.StreamStreaming,
			Meters: descent,
		})
	}

	publishRideState(client, host.StateIdle)
	log.WithField("descent_meters", fmt.Sprintf("%.0f", descent)).Info("Ride finished")
}

func main() {
	_ = godotenv.Load()

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}

	rideMinutes := envInt("SIM_RIDE_MINUTES", 2)
	tickSeconds := envInt("SIM_TICK_SECONDS", 2)
	descentPerTick := envFloat("SIM_DESCENT_PER_TICK", 8.0)
	bikeCount := envInt("SIM_BIKE_COUNT", 2)
	if bikeCount > len(bikeNames) {
		bikeCount = len(bikeNames)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("shock-tracker-sim").
		SetAutoReconnect(true)
	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Fatal("Connection timeout")
	}
	if err := token.Error(); err != nil {
		log.WithError(err).Fatal("Failed to connect to broker")
	}

	log.WithFields(log.Fields{
		"broker":       broker,
		"ride_minutes": rideMinutes,
		"bikes":        bikeCount,
	}).Info("Starting ride simulation")

	// Echo any alerts the tracker dispatches.
	client.Subscribe(host.TopicAlerts, 1, func(_ paho.Client, msg paho.Message) {
		var a host.RideAlert
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			return
		}
		log.WithFields(log.Fields{"title": a.Title, "detail": a.Detail}).Info("Alert received")
	})

	bikes := make([]simBike, 0, bikeCount)
	for i := 0; i < bikeCount; i++ {
		bikes = append(bikes, simBike{ID: fmt.Sprintf("bike-%d", i+1), Name: bikeNames[i]})
	}
	publish(client, host.TopicBikes, true, bikes)
	log.WithField("count", len(bikes)).Info("Published bike roster")

	for ride := 1; ; ride++ {
		bike := bikes[rand.Intn(len(bikes))]
		publish(client, host.TopicProfile, true, host.RideProfile{
			ID:   "profile-" + bike.ID,
			Name: bike.Name + " profile",
		})
		log.WithFields(log.Fields{"ride": ride, "bike": bike.Name}).Info("Starting ride")

		// One ride in four rides telemetry-blind to exercise the
		// estimation fallback.
		withTelemetry := rand.Float64() >= 0.25
		simulateRide(client, rideMinutes, time.Duration(tickSeconds)*time.Second, descentPerTick, withTelemetry)

		time.Sleep(10 * time.Second)
	}
}
