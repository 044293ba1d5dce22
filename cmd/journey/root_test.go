package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--base-url", "https://careers.example.test/"})

	require.NoError(t, cmd.Execute())

	for _, name := range []string{"homepage", "careers-navigation", "qa-jobs", "view-role"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--department", "Engineering", "--timeout", "3s"})
	require.NoError(t, cmd.Execute())

	list, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)

	cfg, err := (&rootOptions{v: viper.New()}).load(list)
	require.NoError(t, err)
	assert.Equal(t, "Engineering", cfg.Department)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "Istanbul, Turkiye", cfg.Location)
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--base-url", "not a url"})
	assert.Error(t, cmd.Execute())
}
