/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.
 
* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/


package plantpulse

//	@title			PlantPulse APIs
//	@version		v3

// @BasePath	/plantpulse/
// @host		localhost:48100

// @securityDefinitions.basic  BasicAuth
// @Security BasicAuth

//go:generate swag init --parseInternal=true --generalInfo=doc.go --pd=true --ot=json --output=./plantpulse-swagger-ui/res/swagger/
