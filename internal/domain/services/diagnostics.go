package services

import (
	"context"
	"time"
)

// CredentialStatus reports which credentials are configured without
// revealing them.
type CredentialStatus struct {
	URL struct {
		Provided bool    `json:"provided"`
		Sample   *string `json:"sample"`
	} `json:"url"`
	Key struct {
		Provided bool `json:"provided"`
		Length   int  `json:"length"`
	} `json:"key"`
	ServiceRole struct {
		Provided bool `json:"provided"`
		Length   int  `json:"length"`
	} `json:"serviceRole"`
}

// CheckStatus is the outcome of one connection check.
type CheckStatus struct {
	Success bool   `json:"success"`
	Tested  bool   `json:"tested"`
	Error   string `json:"error,omitempty"`
	Count   int64  `json:"count"`
}

// SchemaStatus lists public tables seen through the direct connection.
type SchemaStatus struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Tables  []string `json:"tables"`
}

// ConnectionReport is the body of GET /api/test-db-connection.
type ConnectionReport struct {
	Success        bool             `json:"success"`
	Timestamp      time.Time        `json:"timestamp"`
	Target         string           `json:"target"`
	ConnectionType string           `json:"connectionType"`
	Credentials    CredentialStatus `json:"credentials"`
	Companies      CheckStatus      `json:"companies"`
	Admin          CheckStatus      `json:"admin"`
	Database       CheckStatus      `json:"database"`
	Schema         SchemaStatus     `json:"schema"`
	Message        string           `json:"message"`
}

// DiagnosticsService tests connectivity to the database selected for the request
type DiagnosticsService interface {
	TestConnection(ctx context.Context) *ConnectionReport
}
