package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contract = "0x1111111111111111111111111111111111111111"

func TestLoadDefaultsEnvAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MONITOR_RPC", "https://rpc.test")
	t.Setenv("MONITOR_CONTRACT", contract)
	t.Setenv("MONITOR_DISCORD_GENERAL_WEBHOOK", "https://discord.test/general")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("poll-interval", 3*time.Second, "")
	flags.Int("post-attempts", 2, "")
	require.NoError(t, flags.Parse([]string{"--poll-interval=5s"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://rpc.test", cfg.RPCURL)
	assert.Equal(t, contract, cfg.Contract)
	assert.Equal(t, "https://discord.test/general", cfg.DiscordGeneralWebhook)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 2, cfg.PostAttempts)
	assert.Equal(t, 5*time.Minute, cfg.ProfileTTL)
	assert.Equal(t, 24*time.Hour, cfg.PostTTL)
	assert.Equal(t, 3, cfg.ResolveAttempts)
	assert.Equal(t, "launches", cfg.NATSSubject)
	assert.False(t, cfg.ProfilesEnabled())
}

func TestLoadConfigFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MONITOR_SOCIAL_API_TOKEN=from-dotenv\n"), 0o644))
	cfgPath := filepath.Join(dir, "monitor.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
rpc: https://rpc.file
contract: "`+contract+`"
handle-api-url: https://handles.test
social-api-url: https://social.test
profile-ttl: 1m
`), 0o644))

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv("MONITOR_SOCIAL_API_TOKEN") })

	assert.Equal(t, "https://rpc.file", cfg.RPCURL)
	assert.Equal(t, time.Minute, cfg.ProfileTTL)
	assert.Equal(t, "from-dotenv", cfg.SocialAPIToken)
	assert.True(t, cfg.ProfilesEnabled())
}

func TestValidate(t *testing.T) {
	base := Config{RPCURL: "https://rpc.test", Contract: contract, PollInterval: time.Second}
	require.NoError(t, base.Validate())

	missingRPC := base
	missingRPC.RPCURL = ""
	assert.Error(t, missingRPC.Validate())

	badContract := base
	badContract.Contract = "0x123"
	assert.Error(t, badContract.Validate())

	zeroInterval := base
	zeroInterval.PollInterval = 0
	assert.Error(t, zeroInterval.Validate())
}
