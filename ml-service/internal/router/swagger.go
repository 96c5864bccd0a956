/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package router

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	pulseErrors "plantpulse/common/errors"
)

func (r *Router) addSwaggerRoutes() {
	_ = r.service.AddCustomRoute("swagger.json", interfaces.Authenticated, func(c echo.Context) error {
		swaggerFileContent, err := readSwaggerFile("swagger.json")
		if err != nil {
			r.service.LoggingClient().Error(err.Error())
			return err.ConvertToHTTPError()
		}

		var spec = make(map[string]interface{})
		if err := json.Unmarshal(swaggerFileContent, &spec); err != nil {
			r.service.LoggingClient().Error(err.Error())
			return echo.NewHTTPError(http.StatusInternalServerError, "Error reading swagger specification")
		}

		if err := c.JSON(http.StatusOK, spec); err != nil {
			r.service.LoggingClient().Error(err.Error())
			return echo.NewHTTPError(http.StatusInternalServerError, "Error reading swagger specification")
		}

		return nil
	}, http.MethodGet)
	_ = r.service.AddCustomRoute("/index.html", interfaces.Authenticated, echoSwagger.EchoWrapHandler(echoSwagger.URL("swagger.json")), http.MethodGet)
	_ = r.service.AddCustomRoute("/*", interfaces.Authenticated, func(c echo.Context) error {
		path := c.Request().URL.Path
		file, _ := getSwaggerFilePath(filepath.Join("content", "swagger", filepath.FromSlash(path)))
		_ = c.File(file)
		return nil
	}, http.MethodGet)
}

func getSwaggerFilePath(internalPath string) (string, pulseErrors.PulseError) {
	workDir, err := os.Getwd()
	if err != nil {
		return "", pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeServerError, "Error getting path to swagger specification file")
	}

	return filepath.Join(workDir, filepath.FromSlash(internalPath)), nil
}

func readSwaggerFile(internalPath string) ([]byte, pulseErrors.PulseError) {
	filePath, pulseErr := getSwaggerFilePath(internalPath)
	if pulseErr != nil {
		return nil, pulseErr
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeNotFound, "Swagger specification file not found")
	}

	return bytes, nil
}
