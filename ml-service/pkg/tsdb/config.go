/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package tsdb

import (
	"context"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
)

const TsdbPassKey = "password"

func getTsdbConnection(service interfaces.ApplicationService) driver.Conn {
	lc := service.LoggingClient()
	host, err1 := service.GetAppSetting("Tsdb_host")
	port, err2 := service.GetAppSetting("Tsdb_port")
	dbname, err3 := service.GetAppSetting("Tsdb_name")
	user, err4 := service.GetAppSetting("Tsdb_user")
	dbCreds, err5 := service.SecretProvider().GetSecret("tsdbconnection", TsdbPassKey)
	if err1 != nil {
		lc.Errorf("Tsdb_host Error: %v\n", err1)
		os.Exit(-1)
	}
	if err2 != nil {
		lc.Errorf("Tsdb_port Error: %v\n", err2)
		os.Exit(-1)
	}
	if err3 != nil {
		lc.Errorf("Tsdb_name Error: %v\n", err3)
		os.Exit(-1)
	}
	if err4 != nil {
		lc.Errorf("Tsdb_user Error: %v\n", err4)
		os.Exit(-1)
	}
	if err5 != nil {
		lc.Errorf("Tsdb_password Error: %v\n", err5)
		os.Exit(-1)
	}
	lc.Debugf("Tsdb_host as in the application settings: %v", host)

	addr := host + ":" + port

	// Connect to database
	for {
		conn, err := clickhouse.Open(&clickhouse.Options{
			Addr: []string{addr},
			Auth: clickhouse.Auth{
				Database: dbname,
				Username: user,
				Password: dbCreds[TsdbPassKey],
			},
			Settings: clickhouse.Settings{
				"max_execution_time": 60,
			},
			DialTimeout: 5 * time.Second,
			Compression: &clickhouse.Compression{
				Method: clickhouse.CompressionLZ4,
			},
		})
		if err == nil {
			err = conn.Ping(context.Background())
		}
		if err != nil {
			//keep trying to connect to DB
			lc.Errorf("Failed connecting to tsdb (%s|%s|%s). Retrying..", addr, user, dbname)
			time.Sleep(2 * time.Second)
			continue
		}

		lc.Debugf("Successfully connected!")
		return conn
	}
}
