package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/chzchzchz/wacom-profile/internal/hw"
	"github.com/chzchzchz/wacom-profile/internal/logging"
	"github.com/chzchzchz/wacom-profile/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name     string
		action   profile.Action
		expected []string
	}{
		{
			name:     "single tokens",
			action:   profile.Action{Name: "AbsWheelUp", Value: "1"},
			expected: []string{"AbsWheelUp", "1"},
		},
		{
			name:     "empty value is a bare flag",
			action:   profile.Action{Name: "AbsWheelDown", Value: ""},
			expected: []string{"AbsWheelDown"},
		},
		{
			name:     "value with spaces",
			action:   profile.Action{Name: "AbsWheelUp", Value: "key +ctrl z -ctrl"},
			expected: []string{"AbsWheelUp", "key", "+ctrl", "z", "-ctrl"},
		},
		{
			name:     "name with spaces",
			action:   profile.Action{Name: "Button 3", Value: "key e"},
			expected: []string{"Button", "3", "key", "e"},
		},
		{
			name:     "repeated spaces do not produce empty arguments",
			action:   profile.Action{Name: "Button  1", Value: "key  a"},
			expected: []string{"Button", "1", "key", "a"},
		},
		{
			name:     "tabs are not delimiters",
			action:   profile.Action{Name: "Mode", Value: "a\tb"},
			expected: []string{"Mode", "a\tb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Args(tt.action))
		})
	}
}

func TestApply_UpValueAndBareDown(t *testing.T) {
	cfg, err := profile.Parse([]byte("[defaults]\ndevice_id = 056a:0307\n[p:2]\nAbsWheelUp = 1\nAbsWheelDown =\n"))
	require.NoError(t, err)
	table, err := profile.Resolve(cfg, "p")
	require.NoError(t, err)

	f := &hw.Fake{}
	err = New(f, logging.Discard()).Apply(context.Background(), "Pad pad", table.For(2))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"AbsWheelUp", "1"},
		{"AbsWheelDown"},
	}, f.ControlCalls())
	for _, c := range f.Calls() {
		assert.Equal(t, "Pad pad", c.Args[1])
	}
}

func TestApply_NoActions(t *testing.T) {
	f := &hw.Fake{}
	require.NoError(t, New(f, logging.Discard()).Apply(context.Background(), "Pad pad", profile.Actions{}))
	assert.Empty(t, f.Calls())
}

func TestApply_ContinuesAfterFailure(t *testing.T) {
	badParam := errors.New("exit status 1")
	badButton := errors.New("exit status 2")
	f := &hw.Fake{ControlErrs: map[string]error{"Bogus": badParam, "Button": badButton}}

	actions := profile.Actions{
		{Name: "Bogus", Value: "1"},
		{Name: "AbsWheelUp", Value: "4"},
		{Name: "Button 1", Value: "key a"},
		{Name: "AbsWheelDown", Value: "5"},
	}
	err := New(f, logging.Discard()).Apply(context.Background(), "Pad pad", actions)

	assert.Len(t, f.ControlCalls(), 4, "every action must be attempted")

	var cerr *ControlError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "Pad pad", cerr.Device)
	failed := cerr.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, "Bogus", failed[0].Action.Name)
	assert.Equal(t, "Button 1", failed[1].Action.Name)
	assert.ErrorIs(t, err, badParam)
	assert.ErrorIs(t, err, badButton)
	assert.Contains(t, err.Error(), "2 of the actions")
}

func TestApply_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &hw.Fake{}
	err := New(f, logging.Discard()).Apply(ctx, "Pad pad", profile.Actions{{Name: "AbsWheelUp", Value: "1"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.Calls())
}
