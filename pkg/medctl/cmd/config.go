package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/meditracker/medctl/pkg/medctl/config"
	"github.com/meditracker/medctl/pkg/medctl/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage medctl configuration",
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
		newConfigContextsCommand(),
		newConfigCurrentContextCommand(),
		newConfigUseContextCommand(),
		newConfigSetValueCommand(),
		newConfigAddContextCommand(),
		newConfigDeleteContextCommand(),
	)

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		contextName string
		server      string
		basePath    string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a medctl config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists: %s", path)
				}
			}
			if contextName == "" {
				contextName = "default"
			}
			cfg := config.DefaultConfig()
			cfg.CurrentContext = contextName
			cfg.Contexts = append(cfg.Contexts, config.Context{
				Name:     contextName,
				Server:   server,
				BasePath: basePath,
			})
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Initialized config at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextName, "context", "default", "Context name")
	cmd.Flags().StringVar(&server, "server", config.DefaultServer, "MediTracker server URL")
	cmd.Flags().StringVar(&basePath, "base-path", config.DefaultBasePath, "Collection path")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			format := output.Format(rt.OutputFormat())
			if format != output.FormatJSON {
				format = output.FormatYAML
			}
			return output.WriteObject(rt.Writer(), format, rt.cfg)
		},
	}
}

func newConfigContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-contexts",
		Short: "List configured contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			current := rt.cfg.CurrentContextOrDefault()
			tw := tabwriter.NewWriter(rt.Writer(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "CURRENT\tNAME\tSERVER\tBASE PATH")
			for _, ctx := range rt.cfg.Contexts {
				marker := ""
				if ctx.Name == current {
					marker = "*"
				}
				basePath := ctx.BasePath
				if basePath == "" {
					basePath = config.DefaultBasePath
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, ctx.Name, ctx.Server, basePath)
			}
			return tw.Flush()
		},
	}
}

func newConfigUseContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "use-context NAME",
		Aliases: []string{"use", "set-context"},
		Short:   "Set the default context",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			if _, err := rt.cfg.FindContext(name); err != nil {
				return err
			}
			rt.cfg.CurrentContext = name
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Switched to context %q\n", name)
			return nil
		},
	}
}

func newConfigCurrentContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Show the current context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), rt.cfg.CurrentContextOrDefault())
			return nil
		},
	}
}

func newConfigSetValueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Supported keys: settings.output-format, settings.timeout.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			key := args[0]
			value := args[1]
			switch key {
			case "settings.output-format":
				if _, err := output.ParseFormat(value); err != nil {
					return err
				}
				rt.cfg.Settings.OutputFormat = value
			case "settings.timeout":
				if d, err := time.ParseDuration(value); err != nil || d <= 0 {
					return fmt.Errorf("invalid timeout: %s", value)
				}
				rt.cfg.Settings.Timeout = value
			default:
				return fmt.Errorf("unsupported key: %s", key)
			}
			return config.Save(rt.configPathValue(), rt.cfg)
		},
	}
}

func newConfigAddContextCommand() *cobra.Command {
	var (
		server   string
		basePath string
		caFile   string
		insecure bool
	)
	cmd := &cobra.Command{
		Use:   "add-context NAME",
		Short: "Add a new context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			if _, err := rt.cfg.FindContext(name); err == nil {
				return fmt.Errorf("context already exists: %s", name)
			}
			rt.cfg.Contexts = append(rt.cfg.Contexts, config.Context{
				Name:                  name,
				Server:                server,
				BasePath:              basePath,
				CAFile:                caFile,
				InsecureSkipTLSVerify: insecure,
			})
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Added context %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "MediTracker server URL")
	cmd.Flags().StringVar(&basePath, "base-path", "", "Collection path")
	cmd.Flags().StringVar(&caFile, "ca-file", "", "CA bundle for TLS verification")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-tls-verify", false, "Skip TLS verification")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}

func newConfigDeleteContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			filtered := make([]config.Context, 0, len(rt.cfg.Contexts))
			found := false
			for _, ctx := range rt.cfg.Contexts {
				if ctx.Name == name {
					found = true
					continue
				}
				filtered = append(filtered, ctx)
			}
			if !found {
				return fmt.Errorf("context not found: %s", name)
			}
			rt.cfg.Contexts = filtered
			if rt.cfg.CurrentContext == name {
				rt.cfg.CurrentContext = ""
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Deleted context %s\n", name)
			return nil
		},
	}
}
