package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/openwatch/sensorcore/pkg/adc"
	"github.com/openwatch/sensorcore/pkg/calib"
	"github.com/openwatch/sensorcore/pkg/config"
	"github.com/openwatch/sensorcore/pkg/hal"
	"github.com/openwatch/sensorcore/pkg/notify"
	"github.com/openwatch/sensorcore/pkg/store"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., /dev/ttyACM0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use mocked converter instead of serial port")
		notifierFlag = flag.String("notifier", "mqtt", "Notification transport: mqtt, redis or log")
		debugFlag    = flag.Bool("debug", false, "Log battery readings on every monitor pass")
	)
	flag.Parse()

	// Optional .env overrides, mainly for container deployments.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyEnv(cfg)

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	converter, closeConverter, err := newConverter(cfg, *mockFlag)
	if err != nil {
		log.Fatalf("Failed to set up converter: %v", err)
	}
	defer closeConverter()

	st, closeStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up store: %v", err)
	}
	defer closeStore()

	notifier, closeNotifier, err := newNotifier(cfg, *notifierFlag)
	if err != nil {
		log.Fatalf("Failed to set up notifier: %v", err)
	}
	defer closeNotifier()

	subsystem := adc.New(
		converter,
		st,
		calib.NewStoreProvider(st),
		notifier,
		powerGoodFromEnv(),
		adc.Options{
			ConversionTimeout: cfg.Sampling.ConversionTimeout,
			LightSettleDelay:  cfg.Sampling.LightSettleDelay,
		},
	)
	subsystem.Initialize()
	subsystem.SetDebug(*debugFlag)

	if err := subsystem.RunHardwareConfigCycle(); err != nil {
		log.Printf("Hardware config cycle failed: %v", err)
	} else {
		log.Printf("Hardware configuration: %d", subsystem.HardwareConfig())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cycleLoop(ctx, "battery", cfg.Sampling.BatteryInterval, subsystem.RunBatterySenseCycle)
	go cycleLoop(ctx, "light", cfg.Sampling.LightInterval, subsystem.RunLightSenseCycle)
	go monitorLoop(ctx, cfg.Sampling.MonitorInterval, subsystem)

	log.Println("sensord started")
	<-ctx.Done()
	log.Println("sensord stopped")
}

// cycleLoop drives one conversion cycle per tick until the context is
// cancelled.
func cycleLoop(ctx context.Context, name string, interval time.Duration, cycle func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := cycle(); err != nil {
				log.Printf("%s cycle failed: %v", name, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// monitorLoop evaluates the low-battery alert periodically.
func monitorLoop(ctx context.Context, interval time.Duration, subsystem *adc.Subsystem) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			subsystem.EvaluateLowBatteryAlert()
		case <-ctx.Done():
			return
		}
	}
}

func newConverter(cfg *config.Config, mock bool) (hal.Converter, func(), error) {
	if mock {
		m := hal.NewMock()
		// Mid-scale battery, dim light.
		m.SetCounts(hal.BatterySense, 2500)
		m.SetCounts(hal.LightSense, 90)
		m.SetCounts(hal.HardwareConfig, 1024)
		return m, func() {}, nil
	}

	s := hal.NewSerial(cfg.Serial.Port, cfg.Serial.Baud)
	if err := s.Connect(); err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			log.Printf("Failed to close serial port: %v", err)
		}
	}, nil
}

func newStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		r, err := store.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.StateKey)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {
			if err := r.Close(); err != nil {
				log.Printf("Failed to close Redis store: %v", err)
			}
		}, nil
	default:
		f, err := store.NewFile(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	}
}

func newNotifier(cfg *config.Config, transport string) (notify.Notifier, func(), error) {
	switch transport {
	case "redis":
		r, err := notify.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {
			if err := r.Close(); err != nil {
				log.Printf("Failed to close Redis notifier: %v", err)
			}
		}, nil
	case "log":
		return notify.Logger{}, func() {}, nil
	default:
		m, err := notify.NewMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicPrefix)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	}
}

// applyEnv lets deployment environments override connection endpoints
// without editing the config file.
func applyEnv(cfg *config.Config) {
	if v := os.Getenv("SENSORCORE_SERIAL_PORT"); v != "" {
		cfg.Serial.Port = v
	}
	if v := os.Getenv("SENSORCORE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SENSORCORE_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
}

// powerGoodFromEnv reads the external power-good signal from a GPIO
// value file when one is configured. Without it the monitor treats the
// device as always on battery.
func powerGoodFromEnv() func() bool {
	path := os.Getenv("SENSORCORE_POWER_GOOD_FILE")
	if path == "" {
		return nil
	}
	return func() bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		return len(data) > 0 && data[0] == '1'
	}
}
