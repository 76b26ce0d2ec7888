package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/autotime/internal/format"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so a new flag only needs an entry there.
type FlagCompletion struct {
	Long      string   // flag name without "--"
	Help      string   // description text
	Values    []string // suggested values (nil = boolean or free-form)
	ValueName string   // value label; empty for boolean flags
	IsFile    bool     // the value is a file path
}

var flagRegistry = []FlagCompletion{
	{Long: "help", Help: "Show help message"},
	{Long: "version", Help: "Show version information"},
	{Long: "config", Help: "YAML configuration file", IsFile: true, ValueName: "file"},
	{Long: "interval", Help: "Refresh interval of the timer line", Values: []string{"50ms", "110ms", "250ms", "1s"}, ValueName: "duration"},
	{Long: "timestamp-layout", Help: "Go time layout of timestamps", ValueName: "layout"},
	{Long: "display", Help: "Timer display", Values: []string{"line", "spinner", "plain"}, ValueName: "mode"},
	{Long: "unit", Help: "Override a unit label (name=label)", Values: unitValues(), ValueName: "unit"},
	{Long: "shell", Help: "Shell used to run command lines", IsFile: true, ValueName: "shell"},
	{Long: "timeout", Help: "Per-unit time limit", Values: []string{"0", "30s", "1m", "5m", "1h"}, ValueName: "duration"},
	{Long: "script", Help: "Run each line of a file as a unit", IsFile: true, ValueName: "file"},
	{Long: "keep-going", Help: "Continue a script after a failed unit"},
	{Long: "tui", Help: "Show the dashboard"},
	{Long: "quiet", Help: "Do not display timings"},
	{Long: "no-color", Help: "Disable coloured output"},
	{Long: "no-autoload", Help: "Do not load the timing extension at startup"},
	{Long: "metrics-addr", Help: "Serve Prometheus metrics on this address", Values: []string{":9090", "127.0.0.1:9090"}, ValueName: "addr"},
	{Long: "otlp-endpoint", Help: "OTLP/HTTP collector for unit spans", Values: []string{"localhost:4318"}, ValueName: "endpoint"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "history", Help: "Number of units kept in the history", Values: []string{"50", "100", "500"}, ValueName: "count"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

func unitValues() []string {
	out := make([]string, len(format.UnitNames))
	for i, name := range format.UnitNames {
		out[i] = name + "="
	}
	return out
}

// GenerateCompletion writes a completion script for shell to out.
func GenerateCompletion(out io.Writer, shell string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out)
	case "zsh":
		return generateZshCompletion(out)
	case "fish":
		return generateFishCompletion(out)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

func generateBashCompletion(out io.Writer) error {
	opts := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		opts = append(opts, "--"+f.Long)
	}

	var files []string
	var caseBody strings.Builder
	for _, f := range flagRegistry {
		switch {
		case f.IsFile:
			files = append(files, "--"+f.Long)
		case len(f.Values) > 0:
			fmt.Fprintf(&caseBody, "        --%s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n",
				f.Long, strings.Join(f.Values, " "))
		}
	}
	if len(files) > 0 {
		fmt.Fprintf(&caseBody, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n",
			strings.Join(files, "|"))
	}

	script := fmt.Sprintf(`# Bash completion script for autotime
# Add this to your ~/.bashrc or ~/.bash_completion

_autotime_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -o default -F _autotime_completions autotime
`, strings.Join(opts, " "), caseBody.String())

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer) error {
	args := make([]string, 0, len(flagRegistry)+1)
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	args = append(args, "        '*::command:_normal'")

	script := fmt.Sprintf(`#compdef autotime

# Zsh completion script for autotime
# Add this to your ~/.zshrc or place in $fpath

_autotime() {
    _arguments -s \
%s
}

_autotime "$@"
`, strings.Join(args, " \\\n"))

	if _, err := fmt.Fprint(out, script); err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats f as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	suffix := ""
	switch {
	case f.IsFile:
		suffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case len(f.Values) > 0:
		suffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		suffix = fmt.Sprintf(":%s:", f.ValueName)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, suffix)
}

func generateFishCompletion(out io.Writer) error {
	lines := []string{
		"# Fish completion script for autotime",
		"# Add this to ~/.config/fish/completions/autotime.fish",
		"",
	}
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f))
	}
	lines = append(lines, "")

	if _, err := fmt.Fprint(out, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats f as a fish complete command.
func fishCompleteLine(f FlagCompletion) string {
	parts := []string{"complete -c autotime", "-l " + f.Long, fmt.Sprintf("-d '%s'", f.Help)}
	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
