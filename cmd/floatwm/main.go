package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/floatwm/internal/config"
	"github.com/1broseidon/floatwm/internal/ipc"
	"github.com/1broseidon/floatwm/internal/runtimepath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "reload":
		os.Exit(runSimple("reload", "Ask the running window manager to re-read its config.", os.Args[2:], (*ipc.Client).Reload))
	case "stop-session":
		os.Exit(runSimple("stop-session", "End a stuck move or resize.", os.Args[2:], (*ipc.Client).StopSession))
	case "arrange":
		os.Exit(runSimple("arrange", "Re-apply the configured layout to every output.", os.Args[2:], (*ipc.Client).Arrange))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: floatwm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the window manager (foreground)")
	fmt.Fprintln(w, "  status              Show window manager status")
	fmt.Fprintln(w, "  windows             List managed windows")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "  stop-session        End a stuck move or resize")
	fmt.Fprintln(w, "  arrange             Re-apply the layout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "  config init         Write the default configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'floatwm <command> --help' for command-specific options.")
}

// clientFlags are shared by every command that talks to a running instance.
type clientFlags struct {
	display string
}

func (c *clientFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.display, "display", "", "X display of the instance to talk to (default: $DISPLAY)")
}

func (c *clientFlags) client() (*ipc.Client, error) {
	socket, err := runtimepath.SocketPath(c.display)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return ipc.NewClient(socket), nil
}

// parseFlags parses args and reports the exit code to use when parsing
// should stop the command.
func parseFlags(fs *pflag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func newFlagSet(name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: floatwm %s [options]\n\n%s\n\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "Show window manager status via IPC.")
	var cf clientFlags
	cf.register(fs)
	asJSON := fs.Bool("json", false, "Print JSON even on a terminal")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client, err := cf.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		return printJSON(os.Stdout, status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func runWindows(args []string) int {
	fs := newFlagSet("windows", "List managed windows, bottom to top.")
	var cf clientFlags
	cf.register(fs)
	asJSON := fs.Bool("json", false, "Print JSON even on a terminal")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "windows takes no arguments")
		fs.Usage()
		return 2
	}

	client, err := cf.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	data, err := client.ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if wantJSON(*asJSON) {
		return printJSON(os.Stdout, data)
	}
	printWindows(os.Stdout, data.Windows)
	return 0
}

func runSimple(name, usage string, args []string, call func(*ipc.Client) error) int {
	fs := newFlagSet(name, usage)
	var cf clientFlags
	cf.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	client, err := cf.client()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := call(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  floatwm config validate [--path PATH]")
	fmt.Fprintln(w, "  floatwm config print [--path PATH] [--defaults]")
	fmt.Fprintln(w, "  floatwm config path")
	fmt.Fprintln(w, "  floatwm config init [--path PATH] [--force]")
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		fs := newFlagSet("config validate", "Check the config file for errors.")
		path := fs.String("path", "", "Config file path (default: ~/.config/floatwm/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !res.Exists {
			fmt.Printf("config: %s not found, defaults are valid\n", res.Path)
			return 0
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := newFlagSet("config print", "Print the effective configuration as YAML.")
		path := fs.String("path", "", "Config file path (default: ~/.config/floatwm/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "init":
		fs := newFlagSet("config init", "Write the built-in defaults to the config file.")
		path := fs.String("path", "", "Config file path (default: ~/.config/floatwm/config.yaml)")
		force := fs.Bool("force", false, "Overwrite an existing file")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		target := *path
		if target == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			target = p
		}
		if _, err := os.Stat(target); err == nil && !*force {
			fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", target)
			return 1
		}

		cfg := config.DefaultConfig()
		var err error
		if *path == "" {
			err = cfg.Save()
		} else {
			err = cfg.SaveTo(target)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: wrote %s\n", target)
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage(os.Stderr)
		return 2
	}
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}
