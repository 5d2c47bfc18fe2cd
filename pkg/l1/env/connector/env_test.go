package connector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/pt.go/pkg/l1"
	"github.com/robotalks/pt.go/pkg/l1/comm"
	"github.com/robotalks/pt.go/pkg/l1/comm/mqtt"
)

func TestNewConnector(t *testing.T) {
	testCases := []struct {
		url    string
		direct bool
		ref    string
	}{
		{"tcp://127.0.0.1:7000", true, "direct/127.0.0.1:7000"},
		{"ws://robot:8080/l1", true, "direct/robot:8080"},
		{"mqtt://localhost:1883/robo/", false, ""},
		{"mqtts://localhost:8883/robo/", false, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			conf := &Config{RegistryURL: tc.url}
			connector, err := conf.NewConnector()
			require.NoError(t, err)
			if !tc.direct {
				require.IsType(t, &mqtt.Connector{}, connector)
				return
			}
			require.IsType(t, &comm.DirectConnector{}, connector)
			infos, err := connector.Discover(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.ref, infos[0].Ref.Name())
		})
	}
}

func TestNewConnectorErrors(t *testing.T) {
	_, err := (&Config{RegistryURL: "http://host"}).NewConnector()
	require.Error(t, err)
	_, err = (&Config{RegistryURL: "::bad"}).NewConnector()
	require.Error(t, err)
	_, err = (&Config{RegistryURL: "tcp://host:1"}).Connect(context.Background())
	require.Error(t, err)
}

func TestDirectInfoUsesRef(t *testing.T) {
	conf := &Config{
		Ref:         l1.ControllerRef{Type: "gyro", ID: "bench"},
		RegistryURL: "tcp://127.0.0.1:7000",
	}
	connector, err := conf.NewConnector()
	require.NoError(t, err)
	infos, err := connector.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, "gyro/bench", infos[0].Ref.Name())
}

func TestDiscoverFilter(t *testing.T) {
	conf := &Config{RegistryURL: "tcp://127.0.0.1:7000"}
	_, infos, err := conf.Discover(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	_, infos, err = conf.Discover(context.Background(), func(info l1.ControllerInfo) bool {
		return info.Ref.Type == "gyro"
	})
	require.NoError(t, err)
	require.Empty(t, infos)

	conf.Ref = l1.ControllerRef{Type: "gyro", ID: "bench"}
	_, infos, err = conf.Discover(context.Background(), func(info l1.ControllerInfo) bool {
		return info.Ref.Type == "gyro"
	})
	require.NoError(t, err)
	require.Len(t, infos, 1)
}

func TestNewConfigCopiesDefault(t *testing.T) {
	conf := NewConfig()
	require.False(t, Default() == conf)
	require.Equal(t, Default().RegistryURL, conf.RegistryURL)
	require.Equal(t, 5*time.Second, conf.DiscoverTimeout)
}
