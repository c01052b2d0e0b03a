// Command fluid is the project CLI: it runs generation passes, watches for
// changes, and statically checks that every discovered route file exports a
// router constructor.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/fluidkit/fluid-go/fluidgen"
	"github.com/fluidkit/fluid-go/fluidgen/discover"
	"github.com/fluidkit/fluid-go/internal/exportscan"
	"github.com/fluidkit/fluid-go/internal/runner"
)

type CLI struct {
	Config string `help:"Path to the project config file." default:"fluid.config.yaml" short:"c"`

	Gen     GenCmd     `cmd:"" help:"Run a generation pass."`
	Check   CheckCmd   `cmd:"" help:"Validate route files and exports without generating."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

// GenCmd runs a generation pass. Generation needs the live route table, so
// the pass always executes inside the user's program: when the target
// package exports a func() *fluid.App constructor, the pass runs through an
// injected entry point; otherwise the package is assumed to be its own
// generator and is run directly.
type GenCmd struct {
	Package string `arg:"" optional:"" default:"." help:"Package defining the app constructor, or a generator main package."`
	Watch   bool   `help:"Watch the project and regenerate on change." short:"w"`
}

func (c *GenCmd) Run(cli *CLI) error {
	gen := func() error { return c.generate(cli.Config) }
	if !c.Watch {
		return gen()
	}

	cfg, err := fluidgen.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	return watch(cfg, gen)
}

func (c *GenCmd) generate(configPath string) error {
	scan, err := exportscan.Scan(c.Package, ".")
	if err != nil {
		return err
	}

	var apps []exportscan.Export
	for _, e := range scan.Exports {
		if e.Kind == exportscan.KindApp {
			apps = append(apps, e)
		}
	}
	switch len(apps) {
	case 0:
		// No constructor: the package runs its own generation pass.
		return runGenerator(c.Package)
	case 1:
	default:
		names := make([]string, len(apps))
		for i, e := range apps {
			names[i] = e.Name
		}
		return fmt.Errorf("package %s has %d app constructors (%v), keep one", c.Package, len(apps), names)
	}

	absConfig, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}
	out, err := runner.Exec(runner.Options{
		Export:     apps[0],
		PkgDir:     c.Package,
		ConfigPath: absConfig,
	})
	os.Stdout.Write(out)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	return nil
}

func runGenerator(pkg string) error {
	cmd := exec.Command("go", "run", pkg)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("generator run failed: %w", err)
	}
	return nil
}

// CheckCmd cross-checks the filesystem route conventions against the
// statically discoverable router constructors: every discovered route file
// must define a func() *fluid.Router export.
type CheckCmd struct{}

func (c *CheckCmd) Run(cli *CLI) error {
	cfg, err := fluidgen.LoadConfig(cli.Config)
	if err != nil {
		return err
	}

	root := cfg.Discovery.Root
	routes, err := discover.Discover(os.DirFS(root), discover.Options{
		Tokens:  cfg.Discovery.Tokens,
		Include: cfg.Discovery.Include,
		Exclude: cfg.Discovery.Exclude,
	})
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		fmt.Println("no route files discovered")
		return nil
	}

	scan, err := exportscan.Scan(root, "./...")
	if err != nil {
		return err
	}
	routerFiles := scan.RouterFiles()

	missing := 0
	for _, r := range routes {
		abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(r.FilePath)))
		if err != nil {
			return err
		}
		exports, ok := routerFiles[abs]
		if !ok {
			fmt.Printf("MISSING  %s: no func() *fluid.Router export\n", r.FilePath)
			missing++
			continue
		}
		fmt.Printf("ok       %s -> %s (%s)\n", r.FilePath, exports[0].Name, r.PathPrefix())
	}

	fmt.Printf("%d route file(s), %d missing export(s)\n", len(routes), missing)
	if missing > 0 {
		return fmt.Errorf("%d route file(s) without a router constructor", missing)
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("fluid"),
		kong.Description("Typed TypeScript client generation for fluid apps."),
		kong.UsageOnError(),
		kong.Bind(cli),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
