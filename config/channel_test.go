package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arinc653/p1harness/config"
)

func TestParseChannelURI(t *testing.T) {
	ch, err := config.ParseChannelURI("udp://ping@127.0.0.1:9000")
	require.NoError(t, err)
	require.Equal(t, "ping", ch.Name)
	require.Equal(t, "udp", ch.Protocol)
	require.Equal(t, []string{"127.0.0.1:9000"}, ch.Addresses)
}

func TestParseChannelURI_RejectsUnknownProtocol(t *testing.T) {
	_, err := config.ParseChannelURI("sctp://ping@127.0.0.1:9000")
	require.Error(t, err)
}

func TestParseChannelURI_RequiresName(t *testing.T) {
	_, err := config.ParseChannelURI("udp://127.0.0.1:9000")
	require.Error(t, err)
}

func TestConfig_ChannelByName_CaseInsensitive(t *testing.T) {
	c := config.Default()
	c.Channels = []config.Channel{{Name: "Ping", Protocol: "udp", Addresses: []string{"127.0.0.1:9000"}}}

	ch, ok := c.ChannelByName("ping")
	require.True(t, ok)
	require.Equal(t, "Ping", ch.Name)

	_, ok = c.ChannelByName("pong")
	require.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())

	c.Channels = []config.Channel{{Name: "ch1", Protocol: "bogus", Addresses: []string{"a:1"}}}
	require.Error(t, c.Validate())
}
