package config

import (
	"encoding/json"
	"os"

	"github.com/fcdesk/credvault/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config. Secret material (keys, salts, SENS credentials) is
// deliberately absent: secrets come from the environment, not from files.
type JsonConfig struct {
	EndpointAddr   string   `json:"endpoint_addr"`
	DatabaseDSN    string   `json:"database_dsn"`
	AllowedOrigins []string `json:"allowed_origins"`
	PIIKeyVersion  int      `json:"pii_key_version"`
	TestSMSMode    bool     `json:"test_sms_mode"`
	TestSMSCode    string   `json:"test_sms_code"`
	Environment    string   `json:"environment"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.PIIKeyVersion != 0 {
		config.PIIKeyVersion = c.PIIKeyVersion
	}
	if c.TestSMSMode {
		config.TestSMSMode = true
	}
	if c.TestSMSCode != "" {
		config.TestSMSCode = c.TestSMSCode
	}
	if c.Environment != "" {
		config.Environment = c.Environment
	}
}
