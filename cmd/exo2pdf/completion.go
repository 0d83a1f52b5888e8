package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/ETML-INF/tardis-pipelines/internal/assets"
	"github.com/ETML-INF/tardis-pipelines/internal/dateutil"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

var shells = []Shell{ShellBash, ShellZsh, ShellFish}

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagEnum // has predefined values
	flagFile
	flagDir
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string
	Short  string
	Type   flagType
	Desc   string
	Values []string // for enum flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // positional words, e.g. command names for help
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types and descriptions come from the FlagSet.
type completionMeta struct {
	Values []string
	IsFile bool
	IsDir  bool
}

func flagCompletionMeta() map[string]completionMeta {
	dates := []string{"auto"}
	for preset := range dateutil.DatePresets {
		dates = append(dates, "auto:"+preset)
	}
	sort.Strings(dates[1:])

	return map[string]completionMeta{
		"theme": {Values: assets.Themes()},
		"date":  {Values: dates},

		"config":       {IsFile: true},
		"metrics-file": {IsFile: true},

		"src":        {IsDir: true},
		"html":       {IsDir: true},
		"out":        {IsDir: true},
		"theme-root": {IsDir: true},
	}
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet,
// enriched with flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	meta := flagCompletionMeta()
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}
		if f.Value.Type() == "bool" {
			fd.Type = flagBool
		}
		if m, ok := meta[f.Name]; ok {
			switch {
			case len(m.Values) > 0:
				fd.Type = flagEnum
				fd.Values = m.Values
			case m.IsFile:
				fd.Type = flagFile
			case m.IsDir:
				fd.Type = flagDir
			}
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry for completion. Flags come
// from the same FlagSets the commands parse.
func getCommands() []commandDef {
	cmds := []commandDef{
		{Name: "export", Desc: "Export exercise pages to PDF", Flags: extractFlagsFromFlagSet(newExportFlagSet(&settingsFlags{}))},
		{Name: "index", Desc: "Write index.html listing the exported PDFs", Flags: extractFlagsFromFlagSet(newIndexFlagSet(&settingsFlags{}, new(string)))},
		{Name: "config", Desc: "Print the effective configuration", Flags: extractFlagsFromFlagSet(newInspectFlagSet("config", &settingsFlags{}, new(bool)))},
		{Name: "doctor", Desc: "Check Chrome, theme and course tree", Flags: extractFlagsFromFlagSet(newInspectFlagSet("doctor", &settingsFlags{}, new(bool)))},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script"},
	}
	names := commandNames(cmds)
	for i := range cmds {
		switch cmds[i].Name {
		case "help":
			cmds[i].Args = names
		case "completion":
			for _, s := range shells {
				cmds[i].Args = append(cmds[i].Args, string(s))
			}
		}
	}
	return cmds
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var b strings.Builder
	switch shell {
	case ShellBash:
		b.WriteString("# bash completion for exo2pdf\n")
		writeBashFunction(&b, getCommands())
	case ShellZsh:
		b.WriteString("#compdef exo2pdf\n")
		b.WriteString("autoload -U +X bashcompinit && bashcompinit\n")
		writeBashFunction(&b, getCommands())
	case ShellFish:
		writeFish(&b, getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeBashFunction(b *strings.Builder, cmds []commandDef) {
	b.WriteString("_exo2pdf() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=export\n")
	b.WriteString("    if [[ ${COMP_CWORD} -gt 1 && ${COMP_WORDS[1]} != -* ]]; then\n")
	b.WriteString("        cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    fi\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 && ${cur} != -* ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=($(compgen -W '%s' -- \"${cur}\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n")

	b.WriteString("    case \"${prev}\" in\n")
	for _, f := range valueFlags(cmds) {
		pattern := "--" + f.Long
		if f.Short != "" {
			pattern += "|-" + f.Short
		}
		fmt.Fprintf(b, "        %s)\n", pattern)
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(b, "            COMPREPLY=($(compgen -W '%s' -- \"${cur}\"))\n", strings.Join(f.Values, " "))
		case flagDir:
			b.WriteString("            COMPREPLY=($(compgen -d -- \"${cur}\"))\n")
		default:
			b.WriteString("            COMPREPLY=($(compgen -f -- \"${cur}\"))\n")
		}
		b.WriteString("            return\n")
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")

	b.WriteString("    case \"${cmd}\" in\n")
	for _, c := range cmds {
		words := slices.Clone(c.Args)
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				words = append(words, "-"+f.Short)
			}
		}
		if len(words) == 0 {
			continue
		}
		fmt.Fprintf(b, "        %s)\n", c.Name)
		fmt.Fprintf(b, "            COMPREPLY=($(compgen -W '%s' -- \"${cur}\"))\n", strings.Join(words, " "))
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _exo2pdf exo2pdf\n")
}

// valueFlags lists the flags completed by value, once per name.
func valueFlags(cmds []commandDef) []flagDef {
	var out []flagDef
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type == flagString || f.Type == flagBool || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			out = append(out, f)
		}
	}
	return out
}

func writeFish(b *strings.Builder, cmds []commandDef) {
	b.WriteString("# fish completion for exo2pdf\n")
	b.WriteString("complete -c exo2pdf -f\n")
	names := commandNames(cmds)
	for _, c := range cmds {
		fmt.Fprintf(b, "complete -c exo2pdf -n __fish_use_subcommand -a %s -d %s\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		if c.Name == "export" {
			others := slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == "export" })
			cond = "not __fish_seen_subcommand_from " + strings.Join(others, " ")
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(b, "complete -c exo2pdf -n %s -a %s\n", fishQuote(cond), fishQuote(strings.Join(c.Args, " ")))
		}
		for _, f := range c.Flags {
			fmt.Fprintf(b, "complete -c exo2pdf -n %s -l %s", fishQuote(cond), f.Long)
			if f.Short != "" {
				fmt.Fprintf(b, " -s %s", f.Short)
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(b, " -x -a %s", fishQuote(strings.Join(f.Values, " ")))
			case flagDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			case flagFile:
				b.WriteString(" -r -F")
			case flagString:
				b.WriteString(" -r")
			}
			fmt.Fprintf(b, " -d %s\n", fishQuote(f.Desc))
		}
	}
}

func fishQuote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

// runCompletionCmd handles the completion command.
func runCompletionCmd(args []string, env *Environment) int {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return ExitSuccess
	}
	if len(args) > 1 {
		return printError(env.Stderr, errUnexpectedArgs(args[1:]))
	}
	if err := GenerateCompletion(env.Stdout, Shell(args[0])); err != nil {
		if errors.Is(err, ErrUnsupportedShell) {
			err = fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return printError(env.Stderr, err)
	}
	return ExitSuccess
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exo2pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(exo2pdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(exo2pdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    exo2pdf completion fish > ~/.config/fish/completions/exo2pdf.fish")
}
