// Command nameres resolves host names the way the content-distribution
// client does: through recursive DNS or a hosts file, with literal
// short-circuiting, search-domain expansion, and TTL clamping.
//
// Usage:
//
//	nameres resolve <name> [<name>...]   - Resolve names and print a table
//	nameres url host <url>               - Print the host portion of a URL
//	nameres url rewrite <url> <host>     - Replace a URL's host
//	nameres url strip <addr>             - Unbracket an IPv6 literal
//
// Examples:
//
//	nameres resolve mirror.example.org cache.example.org
//	nameres resolve --hostfile /etc/hosts localhost
//	nameres resolve --nameserver 1.1.1.1:53 --retries 2 example.com
//	nameres url rewrite http://mirror.example.org:8000/data 10.0.0.7
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cachefs/nameres/internal/buildinfo"
	"github.com/cachefs/nameres/internal/config"
	"github.com/cachefs/nameres/internal/resolve"
	"github.com/cachefs/nameres/internal/urlutil"
)

func main() {
	cfg, err := config.New().Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	root := &cobra.Command{
		Use:   "nameres",
		Short: "Name-resolution front end for the cachefs client",
		Long: `nameres resolves host names to IP address sets with freshness deadlines,
using either recursive DNS or a hosts-format file, and exposes the URL
host helpers used to pin requests to resolved addresses.`,
	}

	// ---- version command ----
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version: %s\n", buildinfo.Version)
			fmt.Printf("commit: %s\n", buildinfo.Commit)
		},
	}

	// ---- resolve command ----
	var (
		hostfile    string
		nameservers []string
		domains     []string
		timeout     time.Duration
		retries     uint
		ipv4Only    bool
	)
	resolveCmd := &cobra.Command{
		Use:   "resolve <name> [<name>...]",
		Short: "Resolve names to IP address sets",
		Long: `Resolve one or more host names in a single batch and print the result
table. IP literals are answered without consulting a backend. Passing
--hostfile switches from recursive DNS to the hosts-file backend.`,
		Example: "nameres resolve mirror.example.org 127.0.0.1 '[::1]'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := cfg.Resolver
			if cmd.Flags().Changed("hostfile") {
				rc.Mode = config.ModeHostfile
				rc.HostsFile = hostfile
			}
			if cmd.Flags().Changed("nameserver") {
				rc.Nameservers = nameservers
			}
			if cmd.Flags().Changed("search") {
				rc.SearchDomains = domains
			}
			if cmd.Flags().Changed("timeout") {
				rc.Timeout = timeout
			}
			if cmd.Flags().Changed("retries") {
				rc.Retries = retries
			}
			if cmd.Flags().Changed("ipv4-only") {
				rc.IPv4Only = ipv4Only
			}

			r, err := newResolver(rc)
			if err != nil {
				return err
			}
			hosts := r.ResolveMany(args)
			renderHosts(hosts)
			return nil
		},
	}
	resolveCmd.Flags().StringVar(&hostfile, "hostfile", "", "resolve from a hosts-format file instead of DNS")
	resolveCmd.Flags().StringSliceVar(&nameservers, "nameserver", nil, "name server endpoint (repeatable)")
	resolveCmd.Flags().StringSliceVar(&domains, "search", nil, "search domain for bare names (repeatable)")
	resolveCmd.Flags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "per-attempt query timeout")
	resolveCmd.Flags().UintVar(&retries, "retries", config.DefaultRetries, "additional attempts per query")
	resolveCmd.Flags().BoolVar(&ipv4Only, "ipv4-only", false, "suppress IPv6 queries and answers")

	// ---- url command ----
	urlCmd := &cobra.Command{
		Use:   "url",
		Short: "URL host helpers",
	}
	urlHostCmd := &cobra.Command{
		Use:     "host <url>",
		Short:   "Print the host portion of a URL",
		Example: "nameres url host http://[::1]:3128/path",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			host := urlutil.ExtractHost(args[0])
			if host == "" {
				return fmt.Errorf("no host in %q", args[0])
			}
			fmt.Println(host)
			return nil
		},
	}
	urlRewriteCmd := &cobra.Command{
		Use:     "rewrite <url> <host>",
		Short:   "Replace a URL's host, keeping scheme, port, and path",
		Example: "nameres url rewrite http://mirror.example.org:8000/data 10.0.0.7",
		Args:    cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			fmt.Println(urlutil.RewriteHost(args[0], args[1]))
		},
	}
	urlStripCmd := &cobra.Command{
		Use:     "strip <addr>",
		Short:   "Remove the brackets from an IPv6 literal",
		Example: "nameres url strip '[::1]'",
		Args:    cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			fmt.Println(urlutil.StripBrackets(args[0]))
		},
	}
	urlCmd.AddCommand(urlHostCmd, urlRewriteCmd, urlStripCmd)

	// ---- config command ----
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the nameres configuration",
	}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file for editing",
		Long: `Write the default configuration to ~/.nameres/config.yaml so it can be
edited. An existing file is overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.New().Save(config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote default configuration to ~/%s\n", config.DefaultConfigPath)
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd)

	root.AddCommand(resolveCmd, urlCmd, configCmd, versionCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolver is the surface shared by both backends that the CLI needs.
type resolver interface {
	ResolveMany(names []string) []resolve.Host
	SetSearchDomains(domains []string) bool
}

func newResolver(rc config.ResolverConfig) (resolver, error) {
	switch rc.Mode {
	case config.ModeHostfile:
		r, err := resolve.NewHostfile(rc.HostsFile, rc.IPv4Only)
		if err != nil {
			return nil, err
		}
		r.SetSearchDomains(rc.SearchDomains)
		return r, nil
	default:
		r, err := resolve.NewNetwork(rc.IPv4Only, rc.Retries, rc.Timeout)
		if err != nil {
			return nil, err
		}
		if len(rc.Nameservers) > 0 && !r.SetResolvers(rc.Nameservers) {
			return nil, fmt.Errorf("invalid nameserver list: %v", rc.Nameservers)
		}
		if len(rc.SearchDomains) > 0 {
			r.SetSearchDomains(rc.SearchDomains)
		}
		return r, nil
	}
}

func renderHosts(hosts []resolve.Host) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Status", "IPv4", "IPv6", "Expires"})
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
	)
	table.SetBorder(false)

	for _, h := range hosts {
		status := h.Status().String()
		if h.Status() == resolve.StatusOK {
			status = color.GreenString(status)
		} else {
			status = color.RedString(status)
		}
		table.Append([]string{
			h.Name(),
			status,
			strings.Join(h.IPv4Addresses(), "\n"),
			strings.Join(h.IPv6Addresses(), "\n"),
			h.Deadline().Format(time.RFC3339),
		})
	}
	table.Render()
}
