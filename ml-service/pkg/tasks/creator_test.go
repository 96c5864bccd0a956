package tasks

import (
	"testing"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/go-redsync/redsync/v4"
	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"plantpulse/common/client"
	"plantpulse/common/db"
	pulseErrors "plantpulse/common/errors"
	"plantpulse/ml-service/pkg/dto/task"
	"plantpulse/ml-service/pkg/dto/telemetry"
)

type stubTaskStore struct {
	latest    *task.MaintenanceTask
	latestErr error
	created   []task.MaintenanceTask
	createErr error
	nextID    int64
}

func (s *stubTaskStore) CreateTask(newTask task.MaintenanceTask) (task.MaintenanceTask, error) {
	if s.createErr != nil {
		return newTask, s.createErr
	}
	s.nextID++
	newTask.ID = s.nextID
	s.created = append(s.created, newTask)
	return newTask, nil
}

func (s *stubTaskStore) GetTask(id int64) (task.MaintenanceTask, error) {
	return task.MaintenanceTask{}, nil
}

func (s *stubTaskStore) GetTasks(filter TaskFilter) ([]task.MaintenanceTask, error) {
	return s.created, nil
}

func (s *stubTaskStore) UpdateTask(id int64, update task.UpdateTaskRequest) (task.MaintenanceTask, error) {
	return task.MaintenanceTask{}, nil
}

func (s *stubTaskStore) LatestTaskFor(equipmentID string, since time.Time) (*task.MaintenanceTask, error) {
	return s.latest, s.latestErr
}

type stubRedisClient struct {
	locks []string
}

func (s *stubRedisClient) IncrMetricCounterBy(key string, value int64) (int64, pulseErrors.PulseError) {
	return 0, nil
}

func (s *stubRedisClient) GetMetricCounter(key string) (int64, pulseErrors.PulseError) {
	return 0, nil
}

func (s *stubRedisClient) SetMetricCounter(key string, value int64) pulseErrors.PulseError {
	return nil
}

func (s *stubRedisClient) AcquireRedisLock(lockName string) (*redsync.Mutex, pulseErrors.PulseError) {
	s.locks = append(s.locks, lockName)
	return &redsync.Mutex{}, nil
}

func (s *stubRedisClient) PublishToRedisBus(topic string, msg interface{}) error { return nil }

func (s *stubRedisClient) GetDbClient(dbConfig *db.DatabaseConfig) client.DBClientInterface {
	return s
}

func pinClock(t *testing.T, at time.Time) {
	original := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = original })
}

func anomalyReading() telemetry.ScoredReading {
	reading := telemetry.ScoredReading{}
	reading.MachineID = "PUMP-7"
	reading.Vibration = 96.0
	reading.Temperature = 85.0
	reading.HealthScore = 30.0
	reading.HealthStatus = "POOR"
	reading.Status = telemetry.StatusAnomaly
	reading.CorrelationId = "evt-001"
	return reading
}

func newCreator(t *testing.T, store TaskStoreInterface, redisClient client.DBClientInterface) *AutoCreator {
	creator, err := NewAutoCreator(store, redisClient, new(logger.MockLogger), 0)
	assert.NoError(t, err)
	assert.Equal(t, DefaultDedupWindow, creator.dedupWindow)
	return creator
}

func TestAutoCreator_MaybeCreateTask(t *testing.T) {
	t.Run("MaybeCreateTask - Passed (anomaly creates a DO_FIRST task)", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		pinClock(t, now)
		store := &stubTaskStore{}
		redisClient := &stubRedisClient{}

		created, err := newCreator(t, store, redisClient).MaybeCreateTask(anomalyReading())

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "PUMP-7", created.EquipmentID)
		assert.Equal(t, task.PriorityHigh, created.Priority)
		assert.Equal(t, task.StatusNotStarted, created.Status)
		assert.Equal(t, task.UrgencyUrgent, created.Urgency)
		assert.Equal(t, task.ImportanceImportant, created.Importance)
		assert.Equal(t, 1, created.OrderPriority)
		assert.Equal(t, task.QuadrantDoFirst, created.EisenhowerQuadrant)
		assert.True(t, created.AutoCreated)
		assert.Equal(t, "evt-001", created.AnomalyID)
		assert.True(t, created.DueDate.Equal(now.Add(24*time.Hour)))

		assert.Equal(t, "PUMP-7: High vibration: 96.0", created.Title)
		assert.Contains(t, created.Description, "High vibration: 96.0")
		assert.Contains(t, created.Description, "High temperature: 85.0°C")
		assert.Contains(t, created.Description, "Low health score: 30.0")
		assert.Contains(t, created.Description, "Status ANOMALY")

		assert.Equal(t, []string{taskLockName("PUMP-7")}, redisClient.locks)
	})
	t.Run("MaybeCreateTask - Passed (normal status is a no-op)", func(t *testing.T) {
		store := &stubTaskStore{}
		redisClient := &stubRedisClient{}
		reading := anomalyReading()
		reading.Status = telemetry.StatusNormal

		created, err := newCreator(t, store, redisClient).MaybeCreateTask(reading)

		assert.NoError(t, err)
		assert.Nil(t, created)
		assert.Empty(t, store.created)
		assert.Empty(t, redisClient.locks)
	})
	t.Run("MaybeCreateTask - Passed (recent task blocks a second one)", func(t *testing.T) {
		existing := task.MaintenanceTask{ID: 41, EquipmentID: "PUMP-7", CreatedAt: time.Now().Add(-2 * time.Hour)}
		store := &stubTaskStore{latest: &existing}
		redisClient := &stubRedisClient{}

		created, err := newCreator(t, store, redisClient).MaybeCreateTask(anomalyReading())

		assert.NoError(t, err)
		assert.Nil(t, created)
		assert.Empty(t, store.created)
		// the lock is still taken: dedup must be read under it
		assert.Len(t, redisClient.locks, 1)
	})
	t.Run("MaybeCreateTask - Passed (warning without numeric causes falls back)", func(t *testing.T) {
		store := &stubTaskStore{}
		redisClient := &stubRedisClient{}
		reading := anomalyReading()
		reading.Status = telemetry.StatusWarning
		reading.Vibration = 50
		reading.Temperature = 60
		reading.HealthScore = 65
		reading.HealthStatus = "GOOD"

		created, err := newCreator(t, store, redisClient).MaybeCreateTask(reading)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, "PUMP-7: anomaly detected", created.Title)
		assert.Equal(t, task.PriorityMedium, created.Priority)
		assert.Equal(t, task.QuadrantSchedule, created.EisenhowerQuadrant)
		assert.Equal(t, 2, created.OrderPriority)
	})
	t.Run("MaybeCreateTask - Passed (replayed anomaly id counts as dedup)", func(t *testing.T) {
		store := &stubTaskStore{createErr: &pgconn.PgError{Code: uniqueViolationCode, Message: "duplicate key"}}
		redisClient := &stubRedisClient{}

		created, err := newCreator(t, store, redisClient).MaybeCreateTask(anomalyReading())

		assert.NoError(t, err)
		assert.Nil(t, created)
	})
	t.Run("MaybeCreateTask - Failed (store insert error)", func(t *testing.T) {
		store := &stubTaskStore{createErr: errors.New("connection reset")}
		redisClient := &stubRedisClient{}

		_, err := newCreator(t, store, redisClient).MaybeCreateTask(anomalyReading())

		assert.Error(t, err)
	})
	t.Run("MaybeCreateTask - Failed (dedup lookup error)", func(t *testing.T) {
		store := &stubTaskStore{latestErr: errors.New("connection reset")}
		redisClient := &stubRedisClient{}

		_, err := newCreator(t, store, redisClient).MaybeCreateTask(anomalyReading())

		assert.Error(t, err)
		assert.Empty(t, store.created)
	})
}

func TestCausesFor(t *testing.T) {
	t.Run("all thresholds crossed", func(t *testing.T) {
		causes := causesFor(anomalyReading())
		assert.Equal(t, []string{
			"High vibration: 96.0",
			"High temperature: 85.0°C",
			"Low health score: 30.0",
		}, causes)
	})
	t.Run("nothing crossed falls back to the generic cause", func(t *testing.T) {
		reading := anomalyReading()
		reading.Vibration = 10
		reading.Temperature = 20
		reading.HealthScore = 90

		causes := causesFor(reading)
		assert.Equal(t, []string{genericCause}, causes)
	})
	t.Run("boundary values do not trigger", func(t *testing.T) {
		reading := anomalyReading()
		reading.Vibration = causeVibrationThreshold
		reading.Temperature = causeTemperatureThreshold
		reading.HealthScore = causeHealthThreshold

		causes := causesFor(reading)
		assert.Equal(t, []string{genericCause}, causes)
	})
}
