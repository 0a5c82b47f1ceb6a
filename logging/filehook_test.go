package logging

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusFileHook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robyul.json")

	hook, err := NewLogrusFileHook(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	require.NoError(t, err)
	defer hook.Close()

	log := logrus.New()
	log.Out = ioutil.Discard
	log.Hooks.Add(hook)
	log.WithField("module", "starboard").Info("promoted message to the review queue")

	content, err := ioutil.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "starboard", entry["module"])
	assert.Equal(t, "promoted message to the review queue", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}
