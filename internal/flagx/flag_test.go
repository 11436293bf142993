package flagx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	server := []string{"-c", "-config", "--config", "-blob", "-s3-bucket", "-trace"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"separate value", []string{"-blob", "badger", "-x", "1"}, []string{"-blob", "badger"}},
		{"equals form", []string{"--config=/etc/uh.yaml", "-a", ":8080"}, []string{"--config=/etc/uh.yaml"}},
		{"order preserved", []string{"-s3-bucket", "files", "-c", "uh.json"}, []string{"-s3-bucket", "files", "-c", "uh.json"}},
		{"unknown and positional dropped", []string{"-x", "1", "--y=2", "upload"}, []string{}},
		{"dangling flag kept", []string{"-c"}, []string{"-c"}},
		{"dash value is not consumed", []string{"-trace", "-blob", "memory"}, []string{"-trace", "-blob", "memory"}},
		{"dash inside equals value", []string{"--config=--odd.yaml"}, []string{"--config=--odd.yaml"}},
		{"repeated flag", []string{"-blob", "s3", "-blob", "badger"}, []string{"-blob", "s3", "-blob", "badger"}},
		{"nil args", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, server)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("FilterArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveArgs(t *testing.T) {
	args := []string{"-c", "client.yaml", "download", "--server=http://h:8080", "https://h/s/abcdef#pw", "--out", "x.txt"}
	flags := []string{"-c", "-config", "--server", "-server"}

	assert.Equal(t, []string{"download", "https://h/s/abcdef#pw", "--out", "x.txt"}, RemoveArgs(args, flags))
	assert.Equal(t, []string{"-c", "client.yaml", "--server=http://h:8080"}, FilterArgs(args, flags))
	assert.Equal(t, []string{}, RemoveArgs(nil, flags))
}

func TestConfigFileFlag(t *testing.T) {
	t.Run("short -c with value", func(t *testing.T) {
		assert.Equal(t, "/path/short.yaml", ConfigFileFlag([]string{"-c", "/path/short.yaml"}))
	})

	t.Run("long -config with value", func(t *testing.T) {
		assert.Equal(t, "/path/long.json", ConfigFileFlag([]string{"-config", "/path/long.json"}))
	})

	t.Run("double dash with equals", func(t *testing.T) {
		assert.Equal(t, "/p.yml", ConfigFileFlag([]string{"upload", "--config=/p.yml", "file.txt"}))
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		assert.Empty(t, ConfigFileFlag([]string{"-x", "1", "-y", "2"}))
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		assert.Equal(t, "/path/2.json", ConfigFileFlag([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
	})
}
