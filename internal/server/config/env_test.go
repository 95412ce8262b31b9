package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parseEnv_Overlay(t *testing.T) {
	t.Setenv("ENDPOINT_ADDR", ":9090")
	t.Setenv("DATABASE_DSN", "postgres://app@db/credvault")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("SERVICE_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("FC_IDENTITY_KEY", testKeyB64(1))
	t.Setenv("FC_IDENTITY_KEY_VERSION", "2")
	t.Setenv("FC_IDENTITY_KEY_RETIRED", "1:"+testKeyB64(2))
	t.Setenv("FC_IDENTITY_HASH_SALT", "0123456789abcdef")
	t.Setenv("NCP_SENS_ACCESS_KEY", "ak")
	t.Setenv("NCP_SENS_SECRET_KEY", "sk")
	t.Setenv("NCP_SENS_SERVICE_ID", "ncp:sms:kr:123:svc")
	t.Setenv("NCP_SENS_SMS_FROM", "0212345678")
	t.Setenv("TEST_SMS_MODE", "true")
	t.Setenv("TEST_SMS_CODE", "654321")
	t.Setenv("ENVIRONMENT", "staging")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":9090", c.EndpointAddr)
	assert.Equal(t, "postgres://app@db/credvault", c.DatabaseDSN)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, c.AllowedOrigins)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", c.ServiceSecret)
	assert.Equal(t, testKeyB64(1), c.PIIKey)
	assert.Equal(t, 2, c.PIIKeyVersion)
	assert.Equal(t, "1:"+testKeyB64(2), c.PIIRetiredKeys)
	assert.Equal(t, "0123456789abcdef", c.LookupHashSalt)
	assert.Equal(t, "ak", c.SENSAccessKey)
	assert.Equal(t, "sk", c.SENSSecretKey)
	assert.Equal(t, "ncp:sms:kr:123:svc", c.SENSServiceID)
	assert.Equal(t, "0212345678", c.SMSFrom)
	assert.True(t, c.TestSMSMode)
	assert.Equal(t, "654321", c.TestSMSCode)
	assert.Equal(t, "staging", c.Environment)
}

func Test_parseEnv_UnsetLeavesDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins)
	assert.Equal(t, 1, c.PIIKeyVersion)
}
