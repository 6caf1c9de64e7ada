package recipe

import (
	"testing"

	"github.com/grovetools/justrun/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployDump = `{"recipes":{"deploy":{"name":"deploy","doc":"Deploy","parameters":[{"name":"env","kind":"singular","default":null}],"attributes":[{"confirm":"Deploy to prod?"}],"private":false}}}`

func TestParseDeployExample(t *testing.T) {
	recipes, err := Parse([]byte(deployDump))
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	r := recipes[0]
	assert.Equal(t, "deploy", r.Name)
	assert.Equal(t, "Deploy", r.Doc)
	require.NotNil(t, r.Confirm)
	assert.Equal(t, "Deploy to prod?", *r.Confirm)
	assert.Equal(t, "Deploy to prod?", r.ConfirmPrompt())
	require.Len(t, r.Parameters, 1)
	assert.Equal(t, "env", r.Parameters[0].Name)
	assert.Equal(t, KindSingular, r.Parameters[0].Kind)
	assert.True(t, r.Parameters[0].Required())
	assert.Empty(t, r.Groups)
	assert.False(t, r.Private)
}

func TestParseRoundTrip(t *testing.T) {
	type tuple struct {
		name    string
		groups  []string
		private bool
		params  []Parameter
	}
	def := "debug"
	want := []tuple{
		{name: "build", groups: []string{"ci"}, params: []Parameter{{Name: "target", Kind: KindSingular, Default: &def}, {Name: "flags", Kind: KindVariadic}}},
		{name: "_helper", private: true},
		{name: "test", groups: []string{"ci", "dev"}, params: []Parameter{{Name: "pkg", Kind: KindSingular}}},
	}

	dump := `{"recipes":{
		"build":{"name":"build","doc":null,"parameters":[{"name":"target","kind":"singular","default":"debug"},{"name":"flags","kind":"plus","default":null}],"attributes":[{"group":"ci"}],"private":false},
		"_helper":{"name":"_helper","parameters":[],"attributes":[],"private":true},
		"test":{"name":"test","parameters":[{"name":"pkg","kind":"singular","default":null}],"attributes":[{"group":"ci"},{"group":"dev"}],"private":false}
	}}`

	recipes, err := Parse([]byte(dump))
	require.NoError(t, err)
	require.Len(t, recipes, len(want))

	for i, w := range want {
		r := recipes[i]
		assert.Equal(t, w.name, r.Name, "document order is preserved")
		assert.Equal(t, w.groups, r.Groups)
		assert.Equal(t, w.private, r.Private)
		assert.Equal(t, w.params, r.Parameters)
	}
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name        string
		attrs       string
		private     bool
		wantPrivate bool
		wantGroups  []string
		wantConfirm *string
		wantAttrs   []Attribute
	}{
		{
			name:        "bare private tag",
			attrs:       `["private"]`,
			wantPrivate: true,
			wantAttrs:   []Attribute{Tag("private")},
		},
		{
			name:        "private mapping",
			attrs:       `[{"private":null}]`,
			wantPrivate: true,
			wantAttrs:   []Attribute{KeyValue("private", "")},
		},
		{
			name:        "private field",
			attrs:       `[]`,
			private:     true,
			wantPrivate: true,
		},
		{
			name:       "duplicate groups preserved",
			attrs:      `[{"group":"ci"},{"group":"ci"}]`,
			wantGroups: []string{"ci", "ci"},
			wantAttrs:  []Attribute{KeyValue("group", "ci"), KeyValue("group", "ci")},
		},
		{
			name:        "empty confirm still present",
			attrs:       `[{"confirm":""}]`,
			wantConfirm: strPtr(""),
			wantAttrs:   []Attribute{KeyValue("confirm", "")},
		},
		{
			name:        "bare confirm tag",
			attrs:       `["confirm"]`,
			wantConfirm: strPtr(""),
			wantAttrs:   []Attribute{Tag("confirm")},
		},
		{
			name:        "first confirm wins",
			attrs:       `[{"confirm":"first?"},{"confirm":"second?"}]`,
			wantConfirm: strPtr("first?"),
			wantAttrs:   []Attribute{KeyValue("confirm", "first?"), KeyValue("confirm", "second?")},
		},
		{
			name:      "multi-key mapping splits in order",
			attrs:     `[{"group":"ops","doc":"x"}]`,
			wantGroups: []string{"ops"},
			wantAttrs: []Attribute{KeyValue("group", "ops"), KeyValue("doc", "x")},
		},
		{
			name:      "non-array attributes ignored",
			attrs:     `"private"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			private := "false"
			if tt.private {
				private = "true"
			}
			dump := `{"recipes":{"r":{"name":"r","parameters":[],"attributes":` + tt.attrs + `,"private":` + private + `}}}`
			recipes, err := Parse([]byte(dump))
			require.NoError(t, err)
			require.Len(t, recipes, 1)
			r := recipes[0]

			assert.Equal(t, tt.wantPrivate, r.Private)
			assert.Equal(t, tt.wantGroups, r.Groups)
			assert.Equal(t, tt.wantConfirm, r.Confirm)
			assert.Equal(t, tt.wantAttrs, r.Attributes)
		})
	}
}

func TestParseParameterKindsAndDefaults(t *testing.T) {
	dump := `{"recipes":{"r":{"parameters":[
		{"name":"a","kind":"singular","default":"x"},
		{"name":"b","kind":"plus","default":null},
		{"name":"c","kind":"star","default":""},
		{"name":"d","kind":"singular","default":["concatenate","a","b"]}
	]}}}`

	recipes, err := Parse([]byte(dump))
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	r := recipes[0]

	assert.Equal(t, "r", r.Name, "name falls back to the map key")
	require.Len(t, r.Parameters, 4)
	assert.Equal(t, KindSingular, r.Parameters[0].Kind)
	assert.Equal(t, "x", *r.Parameters[0].Default)
	assert.Equal(t, KindVariadic, r.Parameters[1].Kind)
	assert.Nil(t, r.Parameters[1].Default)
	assert.True(t, r.Parameters[1].Required())
	assert.Equal(t, KindVariadic, r.Parameters[2].Kind)
	assert.True(t, r.Parameters[2].AllowEmpty)
	assert.False(t, r.Parameters[2].Required())
	require.NotNil(t, r.Parameters[2].Default)
	assert.Equal(t, "", *r.Parameters[2].Default)
	assert.Equal(t, `["concatenate","a","b"]`, *r.Parameters[3].Default)
}

func TestStarParameterWithoutDefaultIsOptional(t *testing.T) {
	recipes, err := Parse([]byte(`{"recipes":{"r":{"parameters":[{"name":"rest","kind":"star","default":null}]}}}`))
	require.NoError(t, err)
	p := recipes[0].Parameters[0]
	assert.Nil(t, p.Default)
	assert.False(t, p.Required())
}

func TestParseMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":            `{"recipes":`,
		"missing recipes":     `{"aliases":{}}`,
		"recipes not a map":   `{"recipes":[]}`,
		"recipe not a map":    `{"recipes":{"x":"y"}}`,
		"parameters not list": `{"recipes":{"x":{"parameters":{}}}}`,
		"unnamed parameter":   `{"recipes":{"x":{"parameters":[{"kind":"singular"}]}}}`,
	}

	for name, dump := range tests {
		t.Run(name, func(t *testing.T) {
			recipes, err := Parse([]byte(dump))
			require.Error(t, err)
			assert.Empty(t, recipes)
			assert.True(t, errors.Is(err, errors.ErrCodeDiscoveryFailed))
		})
	}
}

func TestConfirmPromptDefault(t *testing.T) {
	r := Recipe{Confirm: strPtr("")}
	assert.True(t, r.NeedsConfirmation())
	assert.Equal(t, DefaultConfirmPrompt, r.ConfirmPrompt())

	assert.False(t, Recipe{}.NeedsConfirmation())
}

func strPtr(s string) *string {
	return &s
}
