package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appterrors "telecare/internal/appointments/errors"
	"telecare/pkg/config"
	mongotx "telecare/pkg/db/mongo"
	"telecare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"
)

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindScheduledBySlot(ctx context.Context, providerID string, day time.Time, timeSlotLabel string) (*model.Appointment, error)
	FindScheduledByProviderAndDay(ctx context.Context, providerID string, day time.Time) ([]*model.Appointment, error)
	FindByProvider(ctx context.Context, providerID string, limit int, offset int64) ([]*model.Appointment, error)
	CountByProvider(ctx context.Context, providerID string) (int64, error)
	FindByPatient(ctx context.Context, patientID string, limit int, offset int64) ([]*model.Appointment, error)
	CountByPatient(ctx context.Context, patientID string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout unless it is a transaction
// SessionContext, which cannot be wrapped without breaking transaction
// semantics.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// dayBounds expands a calendar day into the [00:00:00, 23:59:59.999]
// filter range, so any stored time-of-day component still matches its day.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := model.NormalizeDay(day)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	appt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		// The partial unique index on (provider_id, day, time_slot_label)
		// rejects a second scheduled appointment on the same triple.
		if mongo.IsDuplicateKeyError(err) {
			return appterrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

func (r *mongoAppointmentRepository) FindScheduledBySlot(ctx context.Context, providerID string, day time.Time, timeSlotLabel string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	dayStart, dayEnd := dayBounds(day)
	filter := bson.M{
		"provider_id":     providerID,
		"day":             bson.M{"$gte": dayStart, "$lte": dayEnd},
		"time_slot_label": timeSlotLabel,
		"status":          model.StatusScheduled,
	}

	var appt model.Appointment
	err := r.collection.FindOne(ctx, filter).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment by slot: %w", err)
	}

	return &appt, nil
}

func (r *mongoAppointmentRepository) FindScheduledByProviderAndDay(ctx context.Context, providerID string, day time.Time) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	dayStart, dayEnd := dayBounds(day)
	filter := bson.M{
		"provider_id": providerID,
		"day":         bson.M{"$gte": dayStart, "$lte": dayEnd},
		"status":      model.StatusScheduled,
	}

	opts := options.Find().SetSort(bson.D{{Key: "time_slot_label", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appts, nil
}

func (r *mongoAppointmentRepository) FindByProvider(ctx context.Context, providerID string, limit int, offset int64) ([]*model.Appointment, error) {
	return r.findByField(ctx, "provider_id", providerID, limit, offset)
}

func (r *mongoAppointmentRepository) CountByProvider(ctx context.Context, providerID string) (int64, error) {
	return r.countByField(ctx, "provider_id", providerID)
}

func (r *mongoAppointmentRepository) FindByPatient(ctx context.Context, patientID string, limit int, offset int64) ([]*model.Appointment, error) {
	return r.findByField(ctx, "patient_id", patientID, limit, offset)
}

func (r *mongoAppointmentRepository) CountByPatient(ctx context.Context, patientID string) (int64, error) {
	return r.countByField(ctx, "patient_id", patientID)
}

func (r *mongoAppointmentRepository) findByField(ctx context.Context, field, value string, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "day", Value: -1}, {Key: "time_slot_label", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{field: value}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appts, nil
}

func (r *mongoAppointmentRepository) countByField(ctx context.Context, field, value string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{field: value})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if result.MatchedCount == 0 {
		return appterrors.ErrNotFound
	}

	return nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
