package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialcmd/pkg/session"
)

func writeConfigFile(t *testing.T, content string) string {
	fn := filepath.Join(t.TempDir(), "serialcmd.toml")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestBuiltinConfig(t *testing.T) {
	conf := builtinConfig()
	require.Equal(t, 115200, conf.Baud)
	require.Equal(t, 3, conf.MaxRequests)
	require.Equal(t, time.Second, conf.RequestInterval)
	require.Equal(t, 100*time.Millisecond, conf.StatusInterval)
	require.Zero(t, conf.HandshakeTimeout)
	require.NoError(t, conf.Validate())
	require.Equal(t, session.DefaultConfig(), conf.SessionConfig())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SERIALCMD_PORT", "ttyACM0")
	t.Setenv("SERIALCMD_MQTT_URL", "mqtt://broker:1883/lab/")
	t.Setenv("SERIALCMD_MAX_REQUESTS", "7")
	conf := builtinConfig()
	require.Equal(t, "ttyACM0", conf.Port)
	require.Equal(t, "mqtt://broker:1883/lab/", conf.MQTTURL)
	require.Equal(t, 7, conf.MaxRequests)

	t.Setenv("SERIALCMD_MAX_REQUESTS", "many")
	require.Equal(t, 3, builtinConfig().MaxRequests)
}

func TestConfigInvalidEnv(t *testing.T) {
	t.Setenv("SERIALCMD_MAX_REQUESTS", "many")
	conf := builtinConfig()
	err := applyEnv(&conf)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SERIALCMD_MAX_REQUESTS")
	require.Equal(t, 3, conf.MaxRequests)

	_, err = Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), `"many"`)
}

func TestConfigLoadFile(t *testing.T) {
	fn := writeConfigFile(t, `
port = "/dev/ttyUSB1"
max_requests = 5
request_interval = "500ms"
handshake_timeout = "30s"
`)
	conf := builtinConfig()
	require.NoError(t, conf.LoadFile(fn))
	require.Equal(t, "/dev/ttyUSB1", conf.Port)
	require.Equal(t, 115200, conf.Baud)
	require.Equal(t, 5, conf.MaxRequests)
	require.Equal(t, 500*time.Millisecond, conf.RequestInterval)
	require.Equal(t, 100*time.Millisecond, conf.StatusInterval)
	require.Equal(t, 30*time.Second, conf.HandshakeTimeout)
}

func TestConfigLoadFileErrors(t *testing.T) {
	conf := builtinConfig()
	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.toml")))
	require.Error(t, conf.LoadFile(writeConfigFile(t, "max_requests = ")))
}

func TestConfigFlagOverride(t *testing.T) {
	conf := builtinConfig()
	conf.Port, conf.MaxRequests = "from-file", 5
	flags := Config{Port: "from-flag", MaxRequests: 9, MQTTURL: "mqtt://x/"}
	conf.overrideFrom(&flags, "port")
	conf.overrideFrom(&flags, "config")
	require.Equal(t, "from-flag", conf.Port)
	require.Equal(t, 5, conf.MaxRequests)
	require.Empty(t, conf.MQTTURL)
	conf.overrideFrom(&flags, "delay")
	require.Equal(t, 9, conf.MaxRequests)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero requests", func(c *Config) { c.MaxRequests = 0 }},
		{"negative baud", func(c *Config) { c.Baud = -1 }},
		{"negative interval", func(c *Config) { c.StatusInterval = -time.Second }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := builtinConfig()
			tc.modify(&conf)
			require.Error(t, conf.Validate())
		})
	}
}

func TestClientID(t *testing.T) {
	id := ClientID()
	if id == "" {
		t.Skip("machine id unavailable")
	}
	require.Contains(t, id, "serialcmd-")
	require.True(t, len(id) <= len("serialcmd-")+12)
}
