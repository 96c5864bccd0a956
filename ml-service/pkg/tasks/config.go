/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package tasks

import (
	"fmt"
	"os"
	"time"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const dbPassKey = "password"

// taskDbSettings are the mandatory connection settings for the task store.
var taskDbSettings = []string{"Task_db_host", "Task_db_port", "Task_db_name", "Task_db_user"}

// GetDbConnection opens the gorm handle the task store runs on. Missing
// connection settings end the process, a task service that cannot reach its
// store has nothing to do. Connect failures retry until postgres comes up.
func GetDbConnection(service interfaces.ApplicationService) (*gorm.DB, error) {
	lc := service.LoggingClient()

	settings := make(map[string]string, len(taskDbSettings))
	for _, name := range taskDbSettings {
		value, err := service.GetAppSetting(name)
		if err != nil {
			lc.Errorf("%s Error: %v\n", name, err)
			os.Exit(-1)
		}
		settings[name] = value
	}

	dbCreds, err := service.SecretProvider().GetSecret("dbconnection", dbPassKey)
	if err != nil {
		lc.Errorf("Task_db_password Error: %v\n", err)
		os.Exit(-1)
	}

	host := settings["Task_db_host"]
	port := settings["Task_db_port"]
	dbname := settings["Task_db_name"]
	user := settings["Task_db_user"]
	lc.Debugf("Task_db_host as in the application settings: %v", host)

	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s "+
		"password=%s dbname=%s sslmode=disable",
		host, port, user, dbCreds[dbPassKey], dbname)

	for {
		db, err := gorm.Open(postgres.Open(psqlInfo), &gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				TablePrefix:   "plantpulse.", // schema name
				SingularTable: false,
			},
		})
		if err != nil {
			lc.Errorf("Failed connecting to DB (%s:%s|%s|%s). Retrying..", host, port, user, dbname)
			time.Sleep(2 * time.Second)
			continue
		}

		return db, nil
	}
}
