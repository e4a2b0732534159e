package driverconf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `# driver bundle settings
CFBundleIdentifier: fm.ultraschall.PhantomAudioDriver
IOKitPersonalities:
  PhantomAudioDriver:
    IOClass: PhantomAudioDevice
    AudioEngines:
      - EngineIdentifier: a1
        EngineDescription: Stereo
        NumChannels: 2
      - just a string
      - EngineIdentifier: b2
        EngineDescription: Surround
        NumChannels: 6
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpen_Records(t *testing.T) {
	path := writeFile(t, "Info.yaml", sampleDocument)

	doc, err := Open(path, DefaultLayout())
	require.NoError(t, err)

	records, skipped := doc.Records()
	assert.Equal(t, 1, skipped)
	require.Len(t, records, 2)
	assert.Equal(t, "a1", records[0]["EngineIdentifier"])
	assert.Equal(t, 6, records[1]["NumChannels"])
}

func TestOpen_JSONDocument(t *testing.T) {
	path := writeFile(t, "Info.json", `{"IOKitPersonalities": {"PhantomAudioDriver": {"AudioEngines": [`+
		`{"EngineIdentifier": "a1", "EngineDescription": "Stereo", "NumChannels": 2}]}}}`)

	doc, err := Open(path, DefaultLayout())
	require.NoError(t, err)

	records, skipped := doc.Records()
	assert.Zero(t, skipped)
	assert.Len(t, records, 1)
}

func TestParse_MissingLayout(t *testing.T) {
	tests := map[string]string{
		"empty":              ``,
		"no personalities":   `CFBundleIdentifier: x`,
		"other driver":       "IOKitPersonalities:\n  OtherDriver:\n    AudioEngines: []\n",
		"engines not a list": "IOKitPersonalities:\n  PhantomAudioDriver:\n    AudioEngines: 3\n",
		"personalities list": "IOKitPersonalities:\n  - PhantomAudioDriver\n",
		"scalar root":        `hello`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content), DefaultLayout())
			assert.True(t, errors.Is(err, ErrLayout), "got %v", err)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("a: [unterminated"), DefaultLayout())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrLayout))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.yaml"), DefaultLayout())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReplaceRecords_PreservesRestOfDocument(t *testing.T) {
	path := writeFile(t, "Info.yaml", sampleDocument)

	doc, err := Open(path, DefaultLayout())
	require.NoError(t, err)

	require.NoError(t, doc.ReplaceRecords([]map[string]any{
		{"EngineIdentifier": "c3", "EngineDescription": "Mono", "NumChannels": 1},
	}))

	target := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, doc.WriteFile(target))

	reread, err := Open(target, DefaultLayout())
	require.NoError(t, err)

	records, skipped := reread.Records()
	assert.Zero(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "c3", records[0]["EngineIdentifier"])

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CFBundleIdentifier: fm.ultraschall.PhantomAudioDriver")
	assert.Contains(t, string(data), "IOClass: PhantomAudioDevice")
	assert.Contains(t, string(data), "# driver bundle settings")
}

func TestReplaceRecords_Empty(t *testing.T) {
	doc, err := Parse([]byte(sampleDocument), DefaultLayout())
	require.NoError(t, err)

	require.NoError(t, doc.ReplaceRecords([]map[string]any{}))

	data, err := doc.Bytes()
	require.NoError(t, err)

	reread, err := Parse(data, DefaultLayout())
	require.NoError(t, err)

	records, _ := reread.Records()
	assert.Empty(t, records)
}

func TestCustomLayout(t *testing.T) {
	layout := Layout{PersonalitiesKey: "drivers", DriverName: "loopback", EnginesKey: "engines"}

	doc, err := Parse([]byte("drivers:\n  loopback:\n    engines:\n      - {EngineIdentifier: x, EngineDescription: y, NumChannels: 4}\n"), layout)
	require.NoError(t, err)

	records, _ := doc.Records()
	assert.Len(t, records, 1)
}
