package gitaudit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/varalys/gitaudit/internal/config"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}

	var output string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .gitaudit.yml with the default options",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return &exitError{code: exitUsage, err: fmt.Errorf("%s already exists (use --force to overwrite)", output)}
			}
			b, err := yaml.Marshal(defaultFile())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(g.stdout, "Wrote", output)
			return nil
		},
	}
	initCmd.Flags().StringVar(&output, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	af := &auditFlags{}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after flags, environment and file are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := resolveOptions(cmd, af)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			s, err := config.Parse(raw)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			enc := yaml.NewEncoder(g.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(settingsFile(s)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	addAuditFlags(showCmd, af)

	cfgCmd.AddCommand(initCmd, showCmd)
	return cfgCmd
}

// fileConfig is the on-disk shape of .gitaudit.yml.
type fileConfig struct {
	RepositoryPath      string                          `yaml:"repository_path,omitempty"`
	ScanWorkingTree     bool                            `yaml:"scan_working_tree"`
	ScanStaged          bool                            `yaml:"scan_staged"`
	ScanHistory         bool                            `yaml:"scan_history"`
	MaxCommits          int                             `yaml:"max_commits"`
	CheckSensitiveFiles bool                            `yaml:"check_sensitive_files"`
	CheckLargeFiles     bool                            `yaml:"check_large_files"`
	CheckBinaryFiles    bool                            `yaml:"check_binary_files"`
	MaxFileSize         int64                           `yaml:"max_file_size"`
	ExcludePaths        []string                        `yaml:"exclude_paths"`
	IncludeExtensions   []string                        `yaml:"include_extensions"`
	Timeout             int                             `yaml:"timeout"`
	IgnoreFile          string                          `yaml:"ignore_file"`
	CustomPatterns      map[string]config.CustomPattern `yaml:"custom_patterns,omitempty"`
	RuleToggles         map[string]bool                 `yaml:",inline"`
}

func defaultFile() fileConfig {
	f := settingsFile(config.Defaults())
	f.RepositoryPath = ""
	f.ExcludePaths = []string{}
	f.IncludeExtensions = []string{}
	return f
}

func settingsFile(s config.Settings) fileConfig {
	f := fileConfig{
		RepositoryPath:      filepath.ToSlash(s.RepositoryPath),
		ScanWorkingTree:     s.ScanWorkingTree,
		ScanStaged:          s.ScanStaged,
		ScanHistory:         s.ScanHistory,
		MaxCommits:          s.MaxCommits,
		CheckSensitiveFiles: s.CheckSensitiveFiles,
		CheckLargeFiles:     s.CheckLargeFiles,
		CheckBinaryFiles:    s.CheckBinaryFiles,
		MaxFileSize:         s.MaxFileSize,
		ExcludePaths:        s.ExcludePaths,
		IncludeExtensions:   s.IncludeExtensions,
		Timeout:             int(s.Timeout.Seconds()),
		IgnoreFile:          s.IgnoreFile,
	}
	if len(s.CustomPatterns) > 0 {
		f.CustomPatterns = map[string]config.CustomPattern{}
		for _, cp := range s.CustomPatterns {
			f.CustomPatterns[cp.Name] = cp
		}
	}
	if len(s.RuleToggles) > 0 {
		f.RuleToggles = map[string]bool{}
		for name, on := range s.RuleToggles {
			f.RuleToggles[config.RuleKey(name)] = on
		}
	}
	return f
}
