/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package tasks

import (
	"errors"
	"os"
	"time"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"gorm.io/gorm"

	"plantpulse/ml-service/pkg/dto/task"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// TaskFilter narrows GetTasks. Zero values mean "no filter".
type TaskFilter struct {
	EquipmentID string
	Status      string
	Priority    string
	Quadrant    string
	AutoOnly    bool
	Limit       int
}

type TaskStoreInterface interface {
	CreateTask(newTask task.MaintenanceTask) (task.MaintenanceTask, error)
	GetTask(id int64) (task.MaintenanceTask, error)
	GetTasks(filter TaskFilter) ([]task.MaintenanceTask, error)
	UpdateTask(id int64, update task.UpdateTaskRequest) (task.MaintenanceTask, error)
	LatestTaskFor(equipmentID string, since time.Time) (*task.MaintenanceTask, error)
}

// TaskStore persists maintenance tasks in Postgres. Rows are never deleted;
// every mutation goes through UpdateTask.
type TaskStore struct {
	appService   interfaces.ApplicationService
	dbConnection *gorm.DB
}

func NewTaskStore(service interfaces.ApplicationService) *TaskStore {
	taskStore := new(TaskStore)
	taskStore.appService = service
	taskStore.dbConnection = getDbConnection(service)
	if err := taskStore.InitializeSchema(); err != nil {
		service.LoggingClient().Errorf("Error initializing the maintenance task schema: %v", err)
	}
	return taskStore
}

// NewTaskStoreWithDb is for tests and callers that already hold a connection
func NewTaskStoreWithDb(service interfaces.ApplicationService, db *gorm.DB) *TaskStore {
	return &TaskStore{appService: service, dbConnection: db}
}

func getDbConnection(service interfaces.ApplicationService) *gorm.DB {
	db, err := GetDbConnection(service)
	lc := service.LoggingClient()
	if err != nil {
		lc.Errorf("Database connection Error, exiting the service: %v\n", err)
		os.Exit(-1)
	}
	lc.Debugf("Successfully connected!")
	return db
}

// InitializeSchema creates the schema and table on first start
func (s *TaskStore) InitializeSchema() error {
	s.appService.LoggingClient().Debugf("TaskStore.InitializeSchema():: Start")
	db := s.dbConnection
	if db == nil {
		return errors.New("could not connect to plantpulse database")
	}
	if err := db.Exec("CREATE SCHEMA IF NOT EXISTS plantpulse").Error; err != nil {
		s.appService.LoggingClient().Errorf("Error creating plantpulse schema: %v", err)
		return err
	}
	if err := db.AutoMigrate(&task.MaintenanceTask{}); err != nil {
		s.appService.LoggingClient().Errorf("Error migrating the maintenance_task table: %v", err)
		return err
	}
	s.appService.LoggingClient().Debugf("TaskStore.InitializeSchema():: End")
	return nil
}

func (s *TaskStore) CreateTask(newTask task.MaintenanceTask) (task.MaintenanceTask, error) {
	s.appService.LoggingClient().Debugf("TaskStore.CreateTask():: Start")
	db := s.dbConnection
	if newTask.Status == "" {
		newTask.Status = task.StatusNotStarted
	}
	if newTask.Priority == "" {
		newTask.Priority = task.PriorityMedium
	}
	err := db.Create(&newTask).Error
	if err != nil {
		s.appService.LoggingClient().Errorf("Error while creating the maintenance task: %v", err)
		return newTask, err
	}
	s.appService.LoggingClient().Debugf("TaskStore.CreateTask():: End")
	return newTask, nil
}

func (s *TaskStore) GetTask(id int64) (task.MaintenanceTask, error) {
	db := s.dbConnection
	var result task.MaintenanceTask
	err := db.First(&result, "id = ?", id).Error
	if err != nil {
		s.appService.LoggingClient().Errorf("Error while fetching task %d from DB: %v", id, err)
		return result, err
	}
	return result, nil
}

func (s *TaskStore) GetTasks(filter TaskFilter) ([]task.MaintenanceTask, error) {
	db := s.dbConnection
	var result []task.MaintenanceTask

	query := db.Model(&task.MaintenanceTask{})
	if filter.EquipmentID != "" {
		query = query.Where("equipment_id = ?", filter.EquipmentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Quadrant != "" {
		query = query.Where("eisenhower_quadrant = ?", filter.Quadrant)
	}
	if filter.AutoOnly {
		query = query.Where("auto_created = ?", true)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	err := query.Order("order_priority asc, due_date asc").Limit(limit).Find(&result).Error
	if err != nil {
		s.appService.LoggingClient().Errorf("Error while fetching tasks from DB: %v", err)
		return nil, err
	}
	return result, nil
}

// UpdateTask applies the mutable fields. Moving a task to DONE stamps
// CompletedAt; reopening clears it again.
func (s *TaskStore) UpdateTask(id int64, update task.UpdateTaskRequest) (task.MaintenanceTask, error) {
	s.appService.LoggingClient().Debugf("TaskStore.UpdateTask():: Start")
	db := s.dbConnection

	var existing task.MaintenanceTask
	err := db.First(&existing, "id = ?", id).Error
	if err != nil {
		s.appService.LoggingClient().Errorf("Error while fetching task %d from DB: %v", id, err)
		return existing, err
	}

	if update.Status != nil {
		existing.Status = *update.Status
		if *update.Status == task.StatusDone {
			completedAt := time.Now().UTC()
			existing.CompletedAt = &completedAt
		} else {
			existing.CompletedAt = nil
		}
	}
	if update.AssignedTo != nil {
		existing.AssignedTo = *update.AssignedTo
	}
	if update.Priority != nil {
		existing.Priority = *update.Priority
	}

	// Save writes all columns so clearing CompletedAt sticks
	err = db.Save(&existing).Error
	if err != nil {
		s.appService.LoggingClient().Errorf("Error while updating task %d: %v", id, err)
		return existing, err
	}
	s.appService.LoggingClient().Debugf("TaskStore.UpdateTask():: End")
	return existing, nil
}

// LatestTaskFor returns the newest task for the equipment created after
// since, nil when there is none. The auto-creator's dedup check.
func (s *TaskStore) LatestTaskFor(equipmentID string, since time.Time) (*task.MaintenanceTask, error) {
	db := s.dbConnection
	var result task.MaintenanceTask
	err := db.Where("equipment_id = ? AND created_at > ?", equipmentID, since).
		Order("created_at desc").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.appService.LoggingClient().Errorf("Error while fetching latest task for %s: %v", equipmentID, err)
		return nil, err
	}
	return &result, nil
}
