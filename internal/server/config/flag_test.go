package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret",
			"-t", "1440", "-k", "10", "-u", "https://volunteer.africa/api", "-m", "smtp", "-f", "hello@volunteer.africa",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 24 * time.Hour,
				BcryptCost:                  10,
				BaseURL:                     "https://volunteer.africa/api",
				MailTransport:               "smtp",
				MailFrom:                    "hello@volunteer.africa",
			}},
		{name: "unknown flags are filtered out", args: []string{"cmd", "-x", "ignored", "-s", "k2"},
			expected: &Config{SecretKey: "k2"}},
		{name: "bad int panics", args: []string{"cmd", "-k", "ten"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsEarlierTokenTTL(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Setenv("VOLUNTEERHUB_ACCESS_TOKEN_TTL", "90s")

	t.Run("no -t keeps env value", func(t *testing.T) {
		os.Args = []string{"cmd", "-s", "k"}
		c := &Config{}
		c.LoadDefaults()
		parseEnv(c)
		parseFlags(c)
		assert.Equal(t, 90*time.Second, c.AccessTokenValidityDuration)
	})

	t.Run("explicit -t overrides env", func(t *testing.T) {
		os.Args = []string{"cmd", "-t", "5"}
		c := &Config{}
		c.LoadDefaults()
		parseEnv(c)
		parseFlags(c)
		assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	})
}
