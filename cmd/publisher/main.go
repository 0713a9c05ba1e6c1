package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type positionMessage struct {
	VehicleID string   `json:"vehicle_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedMPS  *float64 `json:"speed_mps,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type gpsErrorMessage struct {
	VehicleID string `json:"vehicle_id"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
}

const (
	metersPerLatDegree = 111194.93
	gpsErrorChance     = 0.05
)

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomVehicleID() string {
	letter := string(charset[rand.Intn(26)])
	digits := fmt.Sprintf("%04d", rand.Intn(10000))
	suffix := string([]byte{charset[rand.Intn(26)], charset[rand.Intn(26)], charset[rand.Intn(26)]})
	return letter + digits + suffix
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> [target_lat] [target_lon]\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	// Defaults roughly mimic a truck heading for a depot outside Leeds.
	targetLat, targetLon := 53.7997, -1.5492
	if len(os.Args) >= 4 {
		if v, err := strconv.ParseFloat(os.Args[2], 64); err == nil {
			targetLat = v
		}
		if v, err := strconv.ParseFloat(os.Args[3], 64); err == nil {
			targetLon = v
		}
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("hgv-drive-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	vid := randomVehicleID()

	// Start about 5km south of the target and drive toward it.
	lat := targetLat - 5000/metersPerLatDegree
	lon := targetLon
	speed := 13.5 // ~48 km/h

	log.Printf("connected to %s, vehicle %s driving toward (%.4f, %.4f) every %ds",
		broker, vid, targetLat, targetLon, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if rand.Float64() < gpsErrorChance {
			msg := gpsErrorMessage{VehicleID: vid, Code: 2, Message: "position unavailable"}
			payload, _ := json.Marshal(msg)
			topic := fmt.Sprintf("/hgv/vehicle/%s/gps_error", vid)
			client.Publish(topic, 1, false, payload).Wait()
			log.Printf("published to %s: %s", topic, payload)
			continue
		}

		// Step toward the target, with a little heading jitter.
		dLat := targetLat - lat
		dLon := targetLon - lon
		dist := math.Hypot(dLat, dLon)
		step := speed * float64(intervalSec) / metersPerLatDegree
		if dist > 1e-9 {
			lat += dLat / dist * step
			lon += dLon/dist*step + (rand.Float64()-0.5)*step*0.1
		}

		jitteredSpeed := speed + (rand.Float64()-0.5)*2
		msg := positionMessage{
			VehicleID: vid,
			Latitude:  lat,
			Longitude: lon,
			SpeedMPS:  &jitteredSpeed,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/hgv/vehicle/%s/position", vid)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
