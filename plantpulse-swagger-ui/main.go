/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/labstack/echo/v4"
	"github.com/pelletier/go-toml"
)

// Serves the generated swagger.json and the swagger-ui bundle for the
// PlantPulse services from one static endpoint.

type swaggerConfig struct {
	port int64 `toml:"Port"`
}

var lc = logger.NewClient("plantpulse-swagger-ui", "INFO")

func main() {
	workingDir, err := os.Getwd()
	if err != nil {
		lc.Errorf("Failed to get current working directory: %v", err)
	}

	config, err := readToml(workingDir)
	if err != nil {
		lc.Errorf("Error reading config: %v", err)
		return
	}

	swaggerDir := filepath.Join(workingDir, "res", "swagger")

	// the swagger file ships with a placeholder host, point it at the ingress
	// host the UI is actually reachable on
	if baseUrl := os.Getenv("BASE_URL"); baseUrl != "" {
		if err := rewriteSwaggerHost(filepath.Join(swaggerDir, "swagger.json"), baseUrl); err != nil {
			lc.Errorf("Error rewriting swagger host: %v", err)
			os.Exit(1)
		}
	}

	lc.Infof("Serving swagger UI from %s on port %d", swaggerDir, config.port)

	e := echo.New()
	e.Static("/", swaggerDir)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", config.port)))
}

func readToml(workingDir string) (*swaggerConfig, error) {
	configFilePath := filepath.Join(workingDir, "res", "configuration.toml")
	configFile, err := toml.LoadFile(configFilePath)
	if err != nil {
		return nil, err
	}
	port, ok := configFile.Get("Port").(int64)
	if !ok {
		return nil, fmt.Errorf("Port missing or not a number in %s", configFilePath)
	}
	return &swaggerConfig{port: port}, nil
}

func rewriteSwaggerHost(filePath string, baseUrl string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var swaggerDoc map[string]interface{}
	if err = json.Unmarshal(data, &swaggerDoc); err != nil {
		return err
	}

	nginxPort := os.Getenv("NGINX_PORT")
	if nginxPort == "" {
		nginxPort = "80"
	}
	swaggerDoc["host"] = baseUrl + ":" + nginxPort

	updated, err := json.MarshalIndent(swaggerDoc, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, updated, 0644)
}
