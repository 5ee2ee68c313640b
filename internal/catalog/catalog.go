// Package catalog lists the build modules and site tests attackbuild knows about.
package catalog

import "git.home.luguber.info/inful/attackbuild/internal/foundation/normalization"

// Module names, in default execution order.
const (
	Clean        = "clean"
	StixData     = "stix_data"
	Resources    = "resources"
	Contribute   = "contribute"
	Groups       = "groups"
	Search       = "search"
	Matrices     = "matrices"
	Mitigations  = "mitigations"
	Redirects    = "redirects"
	Software     = "software"
	Tactics      = "tactics"
	Techniques   = "techniques"
	PrevVersions = "prev_versions"
	WebsiteBuild = "website_build"
	Tests        = "tests"
)

// Site test names.
const (
	TestSize          = "size"
	TestLinks         = "links"
	TestExternalLinks = "external_links"
	TestCitations     = "citations"
)

// ModuleNames lists every module in execution order.
var ModuleNames = []string{
	Clean, StixData, Resources, Contribute, Groups, Search, Matrices, Mitigations,
	Redirects, Software, Tactics, Techniques, PrevVersions, WebsiteBuild, Tests,
}

// GeneratorModules are the page-generation modules backed by external generators.
var GeneratorModules = []string{
	Resources, Contribute, Groups, Search, Matrices, Mitigations,
	Redirects, Software, Tactics, Techniques, PrevVersions,
}

// TestNames lists every site test.
var TestNames = []string{TestSize, TestLinks, TestExternalLinks, TestCitations}

// ModuleChoices is the vocabulary accepted by --modules.
var ModuleChoices = normalization.NewVocabulary("argument --modules/-m", ModuleNames...)

// TestChoices is the vocabulary accepted by --test.
var TestChoices = normalization.NewVocabulary("argument --test/-t", TestNames...)

// Priority returns the execution priority of a module (its index in
// ModuleNames), or -1 for unknown names.
func Priority(name string) int {
	for i, n := range ModuleNames {
		if n == name {
			return i
		}
	}
	return -1
}

// IsGenerator reports whether name is an external page generator module.
func IsGenerator(name string) bool {
	for _, n := range GeneratorModules {
		if n == name {
			return true
		}
	}
	return false
}
