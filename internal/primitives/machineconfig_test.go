package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample is Root{State1{State11, State12}, State2}.
func sample() *MachineConfig {
	root := NewStateConfig("Root")
	s1 := root.State("State1")
	s1.State("State11").Transition("Event1", "State12")
	s1.State("State12").Transition("Event2", "State2")
	root.State("State2")
	return &MachineConfig{ID: "sample", Initial: "Root", States: []*StateConfig{root}}
}

func TestMachineConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *MachineConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*MachineConfig) {}},
		{name: "missing machine ID", mutate: func(m *MachineConfig) { m.ID = "" }, wantErr: "machine ID is required"},
		{name: "missing initial", mutate: func(m *MachineConfig) { m.Initial = "" }, wantErr: "initial state ID is required"},
		{name: "initial not top-level", mutate: func(m *MachineConfig) { m.Initial = "State1" }, wantErr: "not a top-level state"},
		{name: "empty states", mutate: func(m *MachineConfig) { m.States = nil }, wantErr: "cannot be empty"},
		{
			name: "unknown target",
			mutate: func(m *MachineConfig) {
				m.States[0].Transition("Reset", "Nowhere")
			},
			wantErr: `invalid transition target "Nowhere"`,
		},
		{
			name: "duplicate id",
			mutate: func(m *MachineConfig) {
				m.States[0].Child("State2").State("State11")
			},
			wantErr: `duplicate state ID "State11"`,
		},
		{
			name: "orphan",
			mutate: func(m *MachineConfig) {
				m.States = append(m.States, NewStateConfig("Island"))
			},
			wantErr: `orphaned state "Island"`,
		},
		{
			name: "too deep",
			mutate: func(m *MachineConfig) {
				s := m.States[0].Child("State2")
				for i := 0; i < 7; i++ {
					s = s.State(string(rune('a' + i)))
				}
			},
			wantErr: "maximum is 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sample()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReachableThroughTransition(t *testing.T) {
	m := sample()
	m.States[0].Child("State2").Transition("Away", "Island")
	m.States = append(m.States, NewStateConfig("Island"))
	assert.NoError(t, m.Validate())
}

func TestFindState(t *testing.T) {
	m := sample()

	s, err := m.FindState("Root.State1.State12")
	require.NoError(t, err)
	assert.Equal(t, "State12", s.ID)

	_, err = m.FindState("Root.State3")
	assert.ErrorContains(t, err, `child "State3" not found in "Root"`)
	_, err = m.FindState("State1")
	assert.ErrorContains(t, err, `state "State1" not found`)
	_, err = m.FindState("")
	assert.Error(t, err)
}

func TestFlattenAndStateIDs(t *testing.T) {
	m := sample()
	all, err := m.Flatten()
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, []string{"Root", "State1", "State11", "State12", "State2"}, m.StateIDs())
}

func TestComputeVersion(t *testing.T) {
	v1, err := ComputeVersion(sample())
	require.NoError(t, err)
	v2, err := ComputeVersion(sample())
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Regexp(t, `^xxh-[0-9a-f]{16}$`, v1)

	changed := sample()
	changed.States[0].Transition("Reset", "State2")
	v3, err := ComputeVersion(changed)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v3)

	pinned := sample()
	pinned.Version = "1.2.0"
	v4, err := ComputeVersion(pinned)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", v4)
}
