package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/arnavsurve/rowpilot/pkg/healing"
	"github.com/fatih/color"
)

// confirmHeal asks on in/out whether to accept a healed selector.
func confirmHeal(in io.Reader, out io.Writer) func(healing.Outcome) bool {
	scanner := bufio.NewScanner(in)
	return func(o healing.Outcome) bool {
		bold := color.New(color.Bold)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %s\n", color.RedString("broken:"), o.FailedSelector)
		fmt.Fprintf(out, "%s %s\n", color.YellowString("cause: "), o.Summary)
		fmt.Fprintf(out, "%s %s\n", color.GreenString("new:   "), o.Selector())
		bold.Fprint(out, "Accept replacement selector? [y/N] ")

		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	}
}
