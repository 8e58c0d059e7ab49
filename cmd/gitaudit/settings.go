package gitaudit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/varalys/gitaudit/internal/config"
	"github.com/varalys/gitaudit/internal/detectors"
)

// auditFlags are the options shared by every command that runs an audit.
type auditFlags struct {
	path       string
	configFile string
	disable    []string
}

// flagKeys maps option keys to the flag that sets them.
var flagKeys = map[string]string{
	config.KeyScanWorkingTree:     "working-tree",
	config.KeyScanStaged:          "staged",
	config.KeyScanHistory:         "history",
	config.KeyMaxCommits:          "max-commits",
	config.KeyCheckSensitiveFiles: "sensitive-files",
	config.KeyCheckLargeFiles:     "large-files",
	config.KeyCheckBinaryFiles:    "binary-files",
	config.KeyMaxFileSize:         "max-file-size",
	config.KeyExcludePaths:        "exclude",
	config.KeyIncludeExtensions:   "include-ext",
	config.KeyTimeout:             "timeout",
	config.KeyIgnoreFile:          "ignore-file",
}

func addAuditFlags(cmd *cobra.Command, af *auditFlags) {
	d := config.Defaults()
	f := cmd.Flags()
	f.StringVarP(&af.path, "path", "p", ".", "repository to audit")
	f.StringVarP(&af.configFile, "config", "c", "", "config file (default: .gitaudit.yml in the repository)")
	f.StringSliceVar(&af.disable, "disable", nil, "comma-separated rule names to disable")
	f.Bool("working-tree", d.ScanWorkingTree, "scan tracked files in the working tree")
	f.Bool("staged", d.ScanStaged, "scan staged files")
	f.Bool("history", d.ScanHistory, "scan files changed in recent commits")
	f.Int("max-commits", d.MaxCommits, "number of recent commits to scan")
	f.Bool("sensitive-files", d.CheckSensitiveFiles, "report tracked files with sensitive names")
	f.Bool("large-files", d.CheckLargeFiles, "report tracked files over --max-file-size")
	f.Bool("binary-files", d.CheckBinaryFiles, "report binary files")
	f.String("max-file-size", "1MiB", "largest file whose content is scanned (e.g. 512KiB, 2MB)")
	f.StringSlice("exclude", nil, "comma-separated globs or path prefixes to skip")
	f.StringSlice("include-ext", nil, "only scan files with these extensions")
	f.Int("timeout", int(d.Timeout.Seconds()), "timeout in seconds for each git call")
	f.String("ignore-file", d.IgnoreFile, "gitignore-style file of paths to skip")
}

// resolveOptions layers flags over GITAUDIT_* environment variables over the
// config file and returns the raw option map for config.Parse.
func resolveOptions(cmd *cobra.Command, af *auditFlags) (map[string]any, error) {
	root, err := filepath.Abs(af.path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("GITAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	raw, err := loadConfigFile(root, af.configFile)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(raw); err != nil {
		return nil, fmt.Errorf("merge config: %w", err)
	}
	for key, name := range flagKeys {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, err
			}
		}
	}
	for _, key := range config.Keys {
		_ = v.BindEnv(key)
	}
	for _, id := range detectors.BuiltinIDs() {
		_ = v.BindEnv(config.RuleKey(id))
	}

	out := v.AllSettings()
	out[config.KeyRepositoryPath] = root
	for _, id := range af.disable {
		if id = strings.TrimSpace(id); id != "" {
			out[config.RuleKey(id)] = false
		}
	}
	return out, nil
}

func loadConfigFile(root, explicit string) (map[string]any, error) {
	if explicit != "" {
		return config.LoadFile(explicit)
	}
	p, ok := config.FindLocal(root)
	if !ok {
		return map[string]any{}, nil
	}
	raw, err := config.LoadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return raw, nil
}
