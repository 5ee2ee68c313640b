// Package cli resolves the command line into build options.
package cli

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/attackbuild/internal/catalog"
	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
)

// Options is the resolved command line. It is built once before any module
// runs and handed to every collaborator that needs it.
type Options struct {
	Refresh               bool     `short:"r" help:"Pull down the current STIX data from the MITRE/CTI GitHub repository."`
	NoStixLinkReplacement bool     `name:"no-stix-link-replacement" help:"Preserve links to attack.mitre.org in the STIX data instead of replacing them with site-relative links."`
	Modules               []string `short:"m" placeholder:"MODULE" help:"Run only the given modules, separated by spaces (${modules}). All modules run when omitted."`
	Tests                 []string `name:"test" short:"t" placeholder:"TEST" help:"Run only the given tests, separated by spaces (${tests}). All tests except external_links run when omitted."`
	Proxy                 string   `help:"Proxy URL used for network access."`
	PrintTests            bool     `name:"print-tests" help:"Force test output to print to stdout even if the results are very long."`
	OverrideExitStatus    bool     `name:"no-test-exitstatus" help:"Exit with success status even if tests fail."`

	Config  string           `short:"c" help:"Build configuration file." default:"${config_path}"`
	Verbose bool             `short:"v" help:"Enable verbose logging."`
	Version kong.VersionFlag `help:"Show version and exit."`
}

// ConfigExplicit reports whether --config was given on the command line.
func (o *Options) ConfigExplicit() bool {
	return o.Config != "" && o.Config != config.DefaultPath
}

// Validate enforces the module and test vocabularies. kong calls it after
// parsing, before any module runs.
func (o *Options) Validate() error {
	if err := catalog.ModuleChoices.Validate(o.Modules); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid module selection").Build()
	}
	if err := catalog.TestChoices.Validate(o.Tests); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid test selection").Build()
	}
	return nil
}
