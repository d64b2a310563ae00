package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"my-icon_1", "myIcon1"},
		{"class", "classAsset"},
		{"Class", "classAsset"},
		{"123abc", "item123Abc"},
		{"logo", "logo"},
		{"Logo", "logo"},
		{"user_profile-picture", "userProfilePicture"},
		{"a--b__c", "aBC"},
		{"trailing-", "trailing"},
		{"trailing__", "trailing"},
		{"hello world", "helloworld"},
		{"logo@2x", "logo2X"},
		{"é", "unknown"},
		{"", "unknown"},
		{"---", "unknown"},
		{"final", "finalAsset"},
		{"finally", "finally"},
		{"9", "item9"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Identifier(tt.input))
		})
	}
}

func TestIdentifier_ReservedWords(t *testing.T) {
	for _, w := range []string{"class", "switch", "return", "default", "break", "if", "else", "for", "var", "final", "const"} {
		assert.True(t, IsReserved(w), w)
		assert.Equal(t, w+"Asset", Identifier(w))
	}

	assert.False(t, IsReserved("while"))
}

func TestTypeSegment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"icons", "Icons"},
		{"my-icons", "MyIcons"},
		{"social_media", "SocialMedia"},
		{"3d", "3D"},
		{"", "Unknown"},
		{"!!", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeSegment(tt.input))
		})
	}
}

func TestSingular(t *testing.T) {
	assert.Equal(t, "image", Singular("images"))
	assert.Equal(t, "icon", Singular("icons"))
	assert.Equal(t, "font", Singular("font"))
	assert.Equal(t, "s", Singular("s"))
	assert.Equal(t, "clas", Singular("class"))
}

func TestCategoryClass(t *testing.T) {
	assert.Equal(t, "_Image", CategoryClass("images"))
	assert.Equal(t, "_Font", CategoryClass("fonts"))
	assert.Equal(t, "_AppIcon", CategoryClass("app-icons"))
	assert.Equal(t, "_Data", CategoryClass("data"))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"images", "images"},
		{"appIcons", "app_icons"},
		{"app-icons", "app_icons"},
		{"HTTPFiles", "http_files"},
		{"3d models", "item_3d_models"},
		{"__", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.input))
		})
	}
}

func TestRegistry_Claim(t *testing.T) {
	r := NewRegistry("_Image")

	name, c := r.Claim("logo", "logo.png")
	assert.Equal(t, "logo", name)
	assert.Nil(t, c)

	name, c = r.Claim("logo", "Logo.svg")
	assert.Equal(t, "logo2", name)
	require.NotNil(t, c)
	assert.Equal(t, "_Image", c.Scope)
	assert.Equal(t, "logo", c.Identifier)
	assert.Equal(t, "logo.png", c.First)
	assert.Equal(t, "Logo.svg", c.Second)
	assert.Equal(t, "logo2", c.Resolved)
	assert.Contains(t, c.String(), `"logo2"`)

	name, c = r.Claim("logo", "LOGO.jpg")
	assert.Equal(t, "logo3", name)
	require.NotNil(t, c)

	assert.Equal(t, 3, r.Len())
}

func TestRegistry_SuffixSkipsTakenNames(t *testing.T) {
	r := NewRegistry("scope")

	_, _ = r.Claim("icon", "a")
	_, _ = r.Claim("icon2", "b")

	name, c := r.Claim("icon", "c")
	require.NotNil(t, c)
	assert.Equal(t, "icon3", name)
}
