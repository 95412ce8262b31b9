package config

import (
	"os"
	"strconv"
)

// parseEnv overlays Config with values from environment variables. It runs
// last, so the environment wins over defaults, the JSON file, and flags.
//
// Recognized variables:
//
//	ENDPOINT_ADDR            HTTP bind address
//	DATABASE_DSN             PostgreSQL DSN
//	ALLOWED_ORIGINS          comma-separated CORS allowlist
//	SERVICE_SECRET           bearer token for /internal routes
//	FC_IDENTITY_KEY          current AES-256 key, base64
//	FC_IDENTITY_KEY_VERSION  version of the current key
//	FC_IDENTITY_KEY_RETIRED  retired keys, "version:base64" comma-separated
//	FC_IDENTITY_HASH_SALT    lookup hash salt
//	NCP_SENS_ACCESS_KEY      SENS access key
//	NCP_SENS_SECRET_KEY      SENS secret key
//	NCP_SENS_SERVICE_ID      SENS service id
//	NCP_SENS_SMS_FROM        registered sender number
//	TEST_SMS_MODE            "true" to skip real SMS delivery
//	TEST_SMS_CODE            fixed code issued in test mode
//	ENVIRONMENT              environment name
func parseEnv(config *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&config.EndpointAddr, "ENDPOINT_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.ServiceSecret, "SERVICE_SECRET")
	setString(&config.PIIKey, "FC_IDENTITY_KEY")
	setString(&config.PIIRetiredKeys, "FC_IDENTITY_KEY_RETIRED")
	setString(&config.LookupHashSalt, "FC_IDENTITY_HASH_SALT")
	setString(&config.SENSAccessKey, "NCP_SENS_ACCESS_KEY")
	setString(&config.SENSSecretKey, "NCP_SENS_SECRET_KEY")
	setString(&config.SENSServiceID, "NCP_SENS_SERVICE_ID")
	setString(&config.SMSFrom, "NCP_SENS_SMS_FROM")
	setString(&config.TestSMSCode, "TEST_SMS_CODE")
	setString(&config.Environment, "ENVIRONMENT")

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("FC_IDENTITY_KEY_VERSION"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.PIIKeyVersion = n
		}
	}
	if v, ok := os.LookupEnv("TEST_SMS_MODE"); ok {
		config.TestSMSMode = v == "true" || v == "1"
	}
}
