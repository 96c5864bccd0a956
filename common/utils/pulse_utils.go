/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package utils

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/edgexfoundry/app-functions-sdk-go/v3/pkg/interfaces"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/common"
	pulseErrors "plantpulse/common/errors"
)

// Identity headers set by the API gateways we sit behind, in lookup order.
var userIdHeaders = []string{"X-Credential-Identifier", "X-Consumer-Username", "helix_sso_uid"}

// ParseSimpleValueToFloat64 parses the string value of a numeric reading into a
// float64 using the reading's declared value type. Unknown value types yield (0, nil).
func ParseSimpleValueToFloat64(valueType string, value string) (float64, error) {
	bits := valueTypeBits(valueType)
	switch valueType {
	case common.ValueTypeUint8, common.ValueTypeUint16, common.ValueTypeUint32, common.ValueTypeUint64:
		parsed, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return 0, err
		}
		return float64(parsed), nil
	case common.ValueTypeInt8, common.ValueTypeInt16, common.ValueTypeInt32, common.ValueTypeInt64:
		parsed, err := strconv.ParseInt(value, 10, bits)
		if err != nil {
			return 0, err
		}
		return float64(parsed), nil
	case common.ValueTypeFloat32, common.ValueTypeFloat64:
		parsed, err := strconv.ParseFloat(value, bits)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	}
	return 0, nil
}

func valueTypeBits(valueType string) int {
	switch valueType {
	case common.ValueTypeUint8, common.ValueTypeInt8:
		return 8
	case common.ValueTypeUint16, common.ValueTypeInt16:
		return 16
	case common.ValueTypeUint32, common.ValueTypeInt32, common.ValueTypeFloat32:
		return 32
	default:
		return 64
	}
}

// GetUserIdFromHeader extracts the calling user's id from the request. The header
// named by the UserId_header app setting is used when configured, otherwise the
// gateway identity headers are tried in order; the basic-auth username from the
// Authorization header is the final fallback.
func GetUserIdFromHeader(req *http.Request, service interfaces.ApplicationService) (string, pulseErrors.PulseError) {
	headerNames := userIdHeaders
	if configured, err := service.GetAppSetting("UserId_header"); err == nil {
		headerNames = []string{configured}
	}

	for _, name := range headerNames {
		if userId := req.Header.Get(name); userId != "" {
			service.LoggingClient().Infof("Retrieved userId '%s' from request header '%s'", userId, name)
			return userId, nil
		}
	}

	if auth := req.Header.Get("Authorization"); auth != "" {
		decoded, _ := base64.StdEncoding.DecodeString(strings.Split(auth, " ")[1])
		userId := strings.Split(string(decoded), ":")[0]
		service.LoggingClient().Infof("Retrieved userId '%s' from request header '%s'", userId, "Authorization")
		return userId, nil
	}

	return "", pulseErrors.NewCommonPulseError(pulseErrors.ErrorTypeConfig, "HTTP header with userid not found")
}
