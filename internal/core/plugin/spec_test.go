package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestNormalize_FlattensSelection tests the basic normalization shapes
func TestNormalize_FlattensSelection(t *testing.T) {
	tests := []struct {
		name        string
		items       []any
		expected    []Spec
		description string
	}{
		{
			name:        "BareNames_GetEmptyOptions",
			items:       []any{"gifsicle", "svgo"},
			expected:    []Spec{{Name: "gifsicle", Options: Options{}}, {Name: "svgo", Options: Options{}}},
			description: "Bare names should receive an empty options object",
		},
		{
			name:        "OptionMaps_PassThrough",
			items:       []any{map[string]Options{"jpegtran": {"progressive": true}}},
			expected:    []Spec{{Name: "jpegtran", Options: Options{"progressive": true}}},
			description: "Single-key option maps should carry their options",
		},
		{
			name:  "DuplicateName_LastOptionsWin",
			items: []any{map[string]Options{"optipng": {"optimizationLevel": 5}}, "svgo", map[string]Options{"optipng": {"optimizationLevel": 2}}},
			expected: []Spec{
				{Name: "optipng", Options: Options{"optimizationLevel": 2}},
				{Name: "svgo", Options: Options{}},
			},
			description: "Later occurrence overwrites options but keeps first-insertion position",
		},
		{
			name:        "BareAfterOptions_ResetsToEmpty",
			items:       []any{map[string]Options{"svgo": {"multipass": true}}, "svgo"},
			expected:    []Spec{{Name: "svgo", Options: Options{}}},
			description: "A bare name is a full overwrite with empty options",
		},
		{
			name:        "NilOptions_BecomeEmpty",
			items:       []any{map[string]Options{"svgo": nil}},
			expected:    []Spec{{Name: "svgo", Options: Options{}}},
			description: "Nil options should normalize to an empty map",
		},
		{
			name:        "UnknownNames_PassThrough",
			items:       []any{"not-a-real-plugin"},
			expected:    []Spec{{Name: "not-a-real-plugin", Options: Options{}}},
			description: "Normalization performs no name validation",
		},
		{
			name:        "Empty_YieldsEmpty",
			items:       nil,
			expected:    []Spec{},
			description: "No selection normalizes to an empty list",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs, err := Normalize(tt.items)
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.expected, specs, tt.description)
		})
	}
}

// TestNormalize_RejectsMalformedItems tests input validation
func TestNormalize_RejectsMalformedItems(t *testing.T) {
	tests := []struct {
		name        string
		items       []any
		description string
	}{
		{
			name:        "MultiKeyMap_Rejected",
			items:       []any{map[string]Options{"a": {}, "b": {}}},
			description: "Option maps must have exactly one name key",
		},
		{
			name:        "UnsupportedType_Rejected",
			items:       []any{42},
			description: "Items must be names or option maps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.items)
			assert.Error(t, err, tt.description)
		})
	}
}

// TestNormalize_PropertyBased_DistinctNames tests that output never repeats a name
func TestNormalize_PropertyBased_DistinctNames(t *testing.T) {
	names := []string{"gifsicle", "jpegtran", "optipng", "svgo", "webp"}

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 20).Draw(t, "count")
		items := make([]any, count)
		for i := range items {
			name := rapid.SampledFrom(names).Draw(t, "name")
			if rapid.Bool().Draw(t, "asMap") {
				items[i] = map[string]Options{name: {"level": rapid.IntRange(0, 9).Draw(t, "level")}}
			} else {
				items[i] = name
			}
		}

		specs, err := Normalize(items)
		assert.NoError(t, err)

		seen := make(map[string]bool)
		for _, s := range specs {
			assert.False(t, seen[s.Name], "Name %q should appear exactly once", s.Name)
			seen[s.Name] = true
			assert.NotNil(t, s.Options, "Options should never be nil")
		}
		assert.LessOrEqual(t, len(specs), count, "Output cannot exceed input length")
	})
}

// TestNormalize_PropertyBased_Idempotent tests the fixed-point property
func TestNormalize_PropertyBased_Idempotent(t *testing.T) {
	names := []string{"gifsicle", "jpegtran", "optipng", "svgo"}

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 12).Draw(t, "count")
		items := make([]any, count)
		for i := range items {
			items[i] = rapid.SampledFrom(names).Draw(t, "name")
		}

		once, err := Normalize(items)
		assert.NoError(t, err)

		replay := make([]any, len(once))
		for i, s := range once {
			replay[i] = s
		}
		twice, err := Normalize(replay)
		assert.NoError(t, err)
		assert.Equal(t, once, twice, "Normalizing its own output should be a fixed point")
	})
}

// TestParseArg_DottedForm tests CLI plugin argument parsing
func TestParseArg_DottedForm(t *testing.T) {
	tests := []struct {
		name         string
		arg          string
		expectedName string
		expectedOpts Options
		expectError  bool
		description  string
	}{
		{
			name:         "BareName",
			arg:          "svgo",
			expectedName: "svgo",
			expectedOpts: Options{},
			description:  "A bare name parses with empty options",
		},
		{
			name:         "BoolValue_TypedAsBool",
			arg:          "jpegtran.progressive=true",
			expectedName: "jpegtran",
			expectedOpts: Options{"progressive": true},
			description:  "YAML scalar typing should produce a bool",
		},
		{
			name:         "IntValue_TypedAsInt",
			arg:          "optipng.optimizationLevel=5",
			expectedName: "optipng",
			expectedOpts: Options{"optimizationLevel": 5},
			description:  "YAML scalar typing should produce an int",
		},
		{
			name:         "StringValue_StaysString",
			arg:          "webp.preset=photo",
			expectedName: "webp",
			expectedOpts: Options{"preset": "photo"},
			description:  "Non-scalar-typed values stay strings",
		},
		{
			name:         "EmptyValue_IsEmptyString",
			arg:          "svgo.datauri=",
			expectedName: "svgo",
			expectedOpts: Options{"datauri": ""},
			description:  "An empty value parses as empty string, not nil",
		},
		{
			name:        "DotWithoutAssignment_Rejected",
			arg:         "svgo.multipass",
			expectError: true,
			description: "The option form requires key=value",
		},
		{
			name:        "MissingName_Rejected",
			arg:         ".key=value",
			expectError: true,
			description: "A dotted option needs a plugin name",
		},
		{
			name:        "Empty_Rejected",
			arg:         "  ",
			expectError: true,
			description: "Blank arguments are invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, opts, err := ParseArg(tt.arg)
			if tt.expectError {
				assert.Error(t, err, tt.description)
				return
			}
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.expectedName, name, tt.description)
			assert.Equal(t, tt.expectedOpts, opts, tt.description)
		})
	}
}
