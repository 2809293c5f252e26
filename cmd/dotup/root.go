package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/arthur-debert/dotup/pkg/bootstrap"
	"github.com/arthur-debert/dotup/pkg/config"
	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/filesystem"
	"github.com/arthur-debert/dotup/pkg/gitconfig"
	"github.com/arthur-debert/dotup/pkg/installer"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/resolver"
	"github.com/arthur-debert/dotup/pkg/types"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbosity    int
	dotfilesFlag string

	skipAll      bool
	overwriteAll bool
	backupAll    bool

	authorName  string
	authorEmail string

	rootCmd = &cobra.Command{
		Use:   "dotup",
		Short: "A personal environment bootstrapper",
		Long: `dotup links your dotfiles into your home directory, sets up your git
identity, and triggers installation of auxiliary tools. Files named
*.symlink anywhere up to one topic directory deep become dotted symlinks
under $HOME.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Fatal errors are printed once, here.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dotup: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&dotfilesFlag, "dotfiles", "", "Dotfiles root (default $DOTFILES_ROOT or ~/.dotfiles)")

	for _, cmd := range []*cobra.Command{bootstrapCmd, linkCmd} {
		cmd.Flags().BoolVar(&skipAll, "skip-all", false, "Skip every conflicting file without prompting")
		cmd.Flags().BoolVar(&overwriteAll, "overwrite-all", false, "Overwrite every conflicting file without prompting")
		cmd.Flags().BoolVar(&backupAll, "backup-all", false, "Back up every conflicting file without prompting")
	}
	bootstrapCmd.Flags().StringVar(&authorName, "name", "", "Git author name for the identity file")
	bootstrapCmd.Flags().StringVar(&authorEmail, "email", "", "Git author email for the identity file")

	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(genconfigCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// presetPolicy maps the blanket flags to a run policy
func presetPolicy() (types.RunPolicy, error) {
	set := 0
	policy := types.NoPolicy
	if skipAll {
		set++
		policy = types.SkipAll
	}
	if overwriteAll {
		set++
		policy = types.OverwriteAll
	}
	if backupAll {
		set++
		policy = types.BackupAll
	}
	if set > 1 {
		return types.NoPolicy, errors.New(errors.ErrInvalidInput,
			"at most one of --skip-all, --overwrite-all, --backup-all may be given")
	}
	return policy, nil
}

// identityFromInput resolves the git identity: flags first, then config
// defaults, then an interactive prompt. Non-interactive runs with no values
// skip the step entirely.
func identityFromInput(cfg *config.Config) *gitconfig.Identity {
	name := authorName
	email := authorEmail
	if name == "" {
		name = cfg.Git.Name
	}
	if email == "" {
		email = cfg.Git.Email
	}

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	reader := bufio.NewReader(os.Stdin)
	if name == "" && interactive {
		fmt.Print("git author name: ")
		line, err := reader.ReadString('\n')
		if err == nil {
			name = strings.TrimSpace(line)
		}
	}
	if email == "" && interactive {
		fmt.Print("git author email: ")
		line, err := reader.ReadString('\n')
		if err == nil {
			email = strings.TrimSpace(line)
		}
	}

	if name == "" || email == "" {
		return nil
	}
	return &gitconfig.Identity{
		AuthorName:       name,
		AuthorEmail:      email,
		CredentialHelper: gitconfig.CredentialHelper(runtime.GOOS),
	}
}

// resolveDotfiles returns the dotfiles root and the loaded configuration.
// The root comes from the --dotfiles flag, DOTFILES_ROOT, the XDG config
// file's dotfiles_root, or ~/.dotfiles, in that order. The configuration
// is then loaded against the resolved root so a dotup.toml inside it
// takes effect.
func resolveDotfiles() (string, *config.Config, error) {
	root := dotfilesFlag
	if root == "" {
		root = os.Getenv(paths.EnvDotfilesRoot)
	}
	if root == "" {
		cfg, err := config.Load("")
		if err != nil {
			return "", nil, err
		}
		root = cfg.DotfilesRoot
	}
	if root == "" {
		var err error
		root, err = paths.GetDotfilesRoot("")
		if err != nil {
			return "", nil, err
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

func runBootstrap(withCollaborators bool) error {
	logger := logging.GetLogger("cmd")

	root, cfg, err := resolveDotfiles()
	if err != nil {
		return err
	}
	policy, err := presetPolicy()
	if err != nil {
		return err
	}

	opts := bootstrap.Options{
		DotfilesRoot:  root,
		Policy:        policy,
		InstallScript: cfg.InstallScript,
		LinkSuffix:    cfg.LinkSuffix,
		BackupSuffix:  cfg.BackupSuffix,
		Ignore:        cfg.Ignore,
	}
	if withCollaborators {
		opts.Identity = identityFromInput(cfg)
		opts.RunInstall = true
	}

	logger.Info().
		Str("dotfiles", root).
		Str("policy", policy.String()).
		Bool("collaborators", withCollaborators).
		Msg("Starting run")

	result, err := bootstrap.Run(filesystem.NewOS(), resolver.NewConsoleProvider(), opts)
	if result != nil {
		printSummary(result)
	}
	return err
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Link dotfiles, set up git identity, and install dependencies",
	Long: `Bootstrap runs the full sequence: link every *.symlink file into $HOME,
write .gitconfig.local from your author name and email (skipped when it
already exists), and run the installer script from the dotfiles root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBootstrap(true)
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link dotfiles into the home directory",
	Long: `Link walks the dotfiles root for *.symlink files and links each into
$HOME as a dotted file. Conflicts prompt for skip, overwrite, or backup;
uppercase answers apply to all remaining files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBootstrap(false)
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the dependency installer only",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cfg, err := resolveDotfiles()
		if err != nil {
			return err
		}
		return installer.Run(root, cfg.InstallScript)
	},
}

var genconfigCmd = &cobra.Command{
	Use:   "genconfig",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Generate(paths.ConfigFilePath())
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dotup version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish]",
	Short:                 "Generate shell completion script",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		}
	},
}
