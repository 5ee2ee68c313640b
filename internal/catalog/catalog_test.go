package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleVocabularyMatchesCLIChoices(t *testing.T) {
	assert.Equal(t, []string{
		"clean", "stix_data", "resources", "contribute", "groups", "search", "matrices",
		"mitigations", "redirects", "software", "tactics", "techniques", "prev_versions",
		"website_build", "tests",
	}, ModuleChoices.Choices())
	assert.Equal(t, []string{"size", "links", "external_links", "citations"}, TestChoices.Choices())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 0, Priority(Clean))
	assert.Equal(t, 1, Priority(StixData))
	assert.Equal(t, len(ModuleNames)-1, Priority(Tests))
	assert.Equal(t, -1, Priority("bogus"))
}

func TestGeneratorModules(t *testing.T) {
	assert.True(t, IsGenerator(Techniques))
	assert.False(t, IsGenerator(Clean))
	assert.False(t, IsGenerator(WebsiteBuild))
	for _, g := range GeneratorModules {
		assert.True(t, ModuleChoices.Contains(g), g)
	}
}
