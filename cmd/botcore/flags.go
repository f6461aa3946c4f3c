package main

import "time"

// GlobalFlags holds minimal global/persistent flags for CLI commands
type GlobalFlags struct {
	ConfigPath string // Only config path for CLI commands
}

// RemoteFlags holds daemon connection flags shared by remote commands
type RemoteFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

// SendFlags holds flags for the send command
type SendFlags struct {
	Message string
	UserID  string
}

// EventsFlags holds flags for the events command
type EventsFlags struct {
	Since string
}

// TemplateFlags holds flags for the template command
type TemplateFlags struct {
	Type   string
	Name   string
	Output string
	Force  bool
	JSON   bool
}
