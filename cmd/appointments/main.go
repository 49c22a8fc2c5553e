package main

import (
	"telecare/internal/appointments/handler"
	"telecare/internal/appointments/repository"
	"telecare/internal/appointments/service"
	"telecare/internal/appointments/validator"
	"telecare/pkg/app"
	"telecare/pkg/config"
	"telecare/pkg/events"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Appointments service")
	appointmentService, publisher := initServices(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAppointmentHandler(appointmentService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.AppointmentService, events.Publisher) {
	publisher := initPublisher(cfg)

	appointmentValidator := validator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	slotLockRepo := repository.NewSlotLockRepository(cfg)
	appointmentService := service.NewAppointmentService(
		appointmentRepo,
		slotLockRepo,
		appointmentValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService, publisher
}

func initPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Lifecycle events disabled, no Kafka brokers configured")
		return events.NewNopPublisher()
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}
	cfg.Log.Info("Lifecycle event publisher initialized",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.KafkaTopic,
	)
	return publisher
}
