package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atomicstack/trammel/internal/app"
	"github.com/atomicstack/trammel/internal/config"
	"github.com/atomicstack/trammel/internal/logging"
	"github.com/atomicstack/trammel/internal/logging/events"
	"github.com/atomicstack/trammel/internal/ui"
)

// version is stamped by the release build; the default marks dev builds.
var version = "dev"

func main() {
	if err := rootCommand().Execute(); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootCommand wires the CLI. The root and its subcommands parse flags
// through config.MustLoad so the TUI and the one-shot commands accept the
// same connection options; cobra only routes.
func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "trammel [flags]",
		Short: "terminal client for the Transmission daemon",
		Long: "Trammel is a full-screen terminal client for the Transmission\n" +
			"BitTorrent daemon. Run it without arguments to open the torrent list;\n" +
			"see 'trammel keys' for the key bindings.",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               runRoot,
	}
	root.AddCommand(
		&cobra.Command{
			Use:                "add [--paused] <file|magnet|url>...",
			Short:              "send torrents to the daemon and exit",
			DisableFlagParsing: true,
			SilenceUsage:       true,
			SilenceErrors:      true,
			RunE:               runAdd,
		},
		&cobra.Command{
			Use:                "keys",
			Short:              "print the key bindings, with config overrides applied",
			DisableFlagParsing: true,
			SilenceUsage:       true,
			SilenceErrors:      true,
			RunE:               runKeys,
		},
		&cobra.Command{
			Use:   "version",
			Short: "print the version and exit",
			Run: func(*cobra.Command, []string) {
				fmt.Println(versionLine())
			},
		},
	)
	return root
}

func runRoot(cmd *cobra.Command, args []string) error {
	if wantsHelp(args) {
		return cmd.Help()
	}
	cfg := config.MustLoad(args)
	if cfg.ShowVersion {
		fmt.Println(versionLine())
		return nil
	}
	if len(cfg.Rest) > 0 {
		return fmt.Errorf("unexpected argument %q (did you mean 'trammel add'?)", cfg.Rest[0])
	}

	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	traceStartup(cfg)

	return app.Run(cfg.App)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if wantsHelp(args) {
		return cmd.Help()
	}
	paused, rest := splitAddArgs(args)
	cfg := config.MustLoad(rest)
	if len(cfg.Rest) == 0 {
		return fmt.Errorf("add: no torrent files, magnets, or URLs given")
	}

	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)

	results, err := app.AddTorrents(cfg.App, cfg.Rest, paused)
	for _, res := range results {
		if res.Duplicate {
			fmt.Printf("duplicate: %s\n", res.Name)
		} else {
			fmt.Printf("added: %s\n", res.Name)
		}
	}
	return err
}

// splitAddArgs pulls the add-only --paused flag out so the remainder can go
// through the shared configuration parser.
func splitAddArgs(args []string) (bool, []string) {
	paused := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--paused" || arg == "-paused" {
			paused = true
			continue
		}
		rest = append(rest, arg)
	}
	return paused, rest
}

func runKeys(cmd *cobra.Command, args []string) error {
	if wantsHelp(args) {
		return cmd.Help()
	}
	cfg := config.MustLoad(args)
	keys := ui.DefaultKeyMap()
	if err := keys.Apply(cfg.App.Keys); err != nil {
		return err
	}
	fmt.Print(keysListing(keys))
	return nil
}

func keysListing(keys ui.KeyMap) string {
	var b strings.Builder
	for _, group := range keys.HelpGroups() {
		b.WriteString(group.Title + "\n")
		for _, binding := range group.Bindings {
			help := binding.Help()
			fmt.Fprintf(&b, "  %-14s %s\n", help.Key, help.Desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func versionLine() string {
	return "trammel " + version
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging. The
// endpoint goes in as a URL, which never carries credentials.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	payload := map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    flags,
		"endpoint": cfg.App.Endpoint.URL(),
		"sort":     cfg.App.Sort.String(),
		"filter":   cfg.App.Filter.String(),
		"version":  version,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and
// dimensions; the trace entry makes "works in my terminal" reports
// debuggable.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		} else {
			entry.IsTerminal = false
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
