package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workConfig = `
[defaults]
device_id = 056a:0307

[work:0]
scroll_up = 1
scroll_down = 2

[work:2]
AbsWheelUp = key +ctrl +z -z -ctrl
AbsWheelDown =

[art:3]
Button 1 = key e
`

func mustParse(t *testing.T, doc string) *Configuration {
	t.Helper()
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func TestResolve_TotalOverModes(t *testing.T) {
	cfg := mustParse(t, workConfig)

	for _, name := range []string{"work", "art"} {
		t.Run(name, func(t *testing.T) {
			table, err := Resolve(cfg, name)
			require.NoError(t, err)
			for _, m := range Modes {
				actions, ok := table[m]
				assert.True(t, ok, "mode %s missing from table", m)
				assert.NotNil(t, actions, "mode %s should be empty, not nil", m)
			}
		})
	}
}

func TestResolve_ActionsKeepOrderAndCase(t *testing.T) {
	table, err := Resolve(mustParse(t, workConfig), "work")
	require.NoError(t, err)

	assert.Equal(t, Actions{
		{Name: "scroll_up", Value: "1"},
		{Name: "scroll_down", Value: "2"},
	}, table.For(0))
	assert.Empty(t, table.For(1))
	assert.Equal(t, Actions{
		{Name: "AbsWheelUp", Value: "key +ctrl +z -z -ctrl"},
		{Name: "AbsWheelDown", Value: ""},
	}, table.For(2))
	assert.Empty(t, table.For(3))
}

func TestResolve_OptionNamesWithSpaces(t *testing.T) {
	table, err := Resolve(mustParse(t, workConfig), "art")
	require.NoError(t, err)
	assert.Equal(t, Actions{{Name: "Button 1", Value: "key e"}}, table.For(3))
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		profile string
		reason  string
	}{
		{
			name:    "no defaults section",
			doc:     "[work:0]\nscroll_up = 1\n",
			profile: "work",
			reason:  "Missing [defaults] section in config file.",
		},
		{
			name:    "defaults without device_id",
			doc:     "[defaults]\nother = x\n[work:0]\nscroll_up = 1\n",
			profile: "work",
			reason:  "Missing device_id in [defaults] section.",
		},
		{
			name:    "profile without any mode section",
			doc:     workConfig,
			profile: "missing",
			reason:  `No valid configuration found for profile "missing"`,
		},
		{
			name:    "profile sections outside the mode range",
			doc:     "[defaults]\ndevice_id = 056a:0307\n[work:4]\nscroll_up = 1\n",
			profile: "work",
			reason:  `No valid configuration found for profile "work"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Resolve(mustParse(t, tt.doc), tt.profile)
			assert.Nil(t, table)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.reason, cerr.Error())
		})
	}
}

func TestDeviceID(t *testing.T) {
	id, err := mustParse(t, workConfig).DeviceID()
	require.NoError(t, err)
	assert.Equal(t, "056a:0307", id)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".wacomProfile")
	require.NoError(t, os.WriteFile(path, []byte(workConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.HasSection("work:0"))
	assert.False(t, cfg.HasSection("work:1"))

	_, err = Load(filepath.Join(dir, "absent"))
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Error(), "No such config file")
}

func TestParse_ValuesAreVerbatim(t *testing.T) {
	cfg := mustParse(t, "[p:0]\nButton 3 = key \"a\" # not a comment\n")
	v, ok := cfg.Option("p:0", "Button 3")
	require.True(t, ok)
	assert.Equal(t, `key "a" # not a comment`, v)

	cfg = mustParse(t, "[defaults]\ndevice_id = 056a:0307\n[w:0]\nButton 1 = key \\\nButton 2 = key b\n")
	table, err := Resolve(cfg, "w")
	require.NoError(t, err)
	assert.Equal(t, Actions{{"Button 1", "key \\"}, {"Button 2", "key b"}}, table.For(0))
}

func TestParse_RejectsRepeatedOption(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "different values", doc: "[w:0]\nButton 1 = key a\nButton 1 = key b\n"},
		{name: "same value", doc: "[w:0]\nButton 1 = key a\nButton 1 = key a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc))
			assert.Nil(t, cfg)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "expected ConfigError, got %v", err)
			assert.Equal(t, `Option "Button 1" in section "w:0" already exists`, cerr.Error())
		})
	}

	_, err := Parse([]byte("[w:0]\nButton 1 = key a\n[w:1]\nButton 1 = key a\n"))
	assert.NoError(t, err, "the same option in two sections is allowed")
}

func TestResolve_InheritsDefaultSection(t *testing.T) {
	doc := "[DEFAULT]\nTouch = off\nButton 1 = key a\n" +
		"[defaults]\ndevice_id = 056a:0307\n" +
		"[w:0]\nButton 1 = key b\n"
	table, err := Resolve(mustParse(t, doc), "w")
	require.NoError(t, err)

	assert.Equal(t, Actions{{"Button 1", "key b"}, {"Touch", "off"}}, table.For(0))
	assert.Empty(t, table.For(1), "modes without a section get nothing from DEFAULT")

	v, ok := mustParse(t, doc).Option("w:0", "Touch")
	assert.True(t, ok)
	assert.Equal(t, "off", v)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "3\n", want: 3},
		{in: "4", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "", wantErr: true},
		{in: "on", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSectionName(t *testing.T) {
	assert.Equal(t, "work:2", SectionName("work", 2))
}
