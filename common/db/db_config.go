/*******************************************************************************
* Contributors: BMC Software, Inc. - BMC Helix Edge
*
* (c) Copyright 2020-2025 BMC Software, Inc.
*******************************************************************************/

package db

import (
	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
)

type DatabaseConfig struct {
	RedisHost     string
	RedisPort     string
	RedisName     string
	RedisUsername string
	RedisPassword string
}

func NewDatabaseConfig() *DatabaseConfig {
	appConfig := new(DatabaseConfig)
	return appConfig
}

// Loads the redis db configuration, the credentials come from the service's secret store
func (dbConfig *DatabaseConfig) LoadAppConfigurations(service interfaces.ApplicationService) {

	redisHost, err := service.GetAppSetting("RedisHost")
	lc := service.LoggingClient()
	if err != nil {
		lc.Error(err.Error())
	}
	lc.Infof("RedisHost %s\n", redisHost)

	redisPort, err := service.GetAppSetting("RedisPort")
	if err != nil {
		lc.Error(err.Error())
	}
	lc.Infof("RedisPort %s\n", redisPort)

	redisName, err := service.GetAppSetting("RedisName")
	if err != nil {
		lc.Error(err.Error())
	}

	lc.Infof("RedisName %v, will read redisdb secret now", redisName)
	redisSecrets, err := service.SecretProvider().GetSecret("redisdb", "username", "password")
	if err == nil {
		lc.Infof("Got the redisdb secret\n")
		dbConfig.RedisUsername = redisSecrets["username"]
		dbConfig.RedisPassword = redisSecrets["password"]
	} else {
		lc.Error(err.Error())
	}

	dbConfig.RedisHost = redisHost
	dbConfig.RedisPort = redisPort
	dbConfig.RedisName = redisName
}
