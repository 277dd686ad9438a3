package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/search"
	"github.com/packtrace/packtrace/internal/ui"
)

var explainFilters filterFlags

// planView is the JSON form of a search plan.
type planView struct {
	Scope    model.Level   `json:"scope"`
	Levels   []model.Level `json:"levels"`
	Mode     string        `json:"mode"`
	Where    string        `json:"where"`
	Args     []any         `json:"args"`
	Joins    []string      `json:"joins"`
	Sort     []string      `json:"sort"`
	GroupBy  model.GroupBy `json:"group_by"`
	Warnings []Warning     `json:"-"`
}

func newPlanView(p *search.Plan) planView {
	where, args := p.Where().SQL()
	if args == nil {
		args = []any{}
	}
	v := planView{
		Scope:   p.Scope,
		Levels:  p.Levels,
		Mode:    planMode(p),
		Where:   where,
		Args:    args,
		Joins:   make([]string, len(p.Joins)),
		Sort:    make([]string, len(p.Sort)),
		GroupBy: p.Request.GroupBy,
	}
	if v.Levels == nil {
		v.Levels = []model.Level{}
	}
	for i, j := range p.Joins {
		v.Joins[i] = j.Name
	}
	for i, t := range p.Sort {
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		v.Sort[i] = t.Field.String() + " " + dir
	}
	v.Warnings = toWarnings(p.Warnings)
	return v
}

func planMode(p *search.Plan) string {
	switch {
	case p.Search == nil:
		return "all"
	case p.Range:
		return "range"
	}
	return "prefix"
}

// markdown describes the plan for terminal rendering.
func (v planView) markdown() string {
	var b strings.Builder
	b.WriteString("## Search plan\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Mode | %s |\n", v.Mode)
	fmt.Fprintf(&b, "| Scope | %s |\n", v.Scope)
	if len(v.Levels) > 0 {
		names := make([]string, len(v.Levels))
		for i, l := range v.Levels {
			names[i] = string(l)
		}
		fmt.Fprintf(&b, "| Levels | %s |\n", strings.Join(names, ", "))
	}
	if v.GroupBy != "" && v.GroupBy != model.GroupNone {
		fmt.Fprintf(&b, "| Group by | %s |\n", v.GroupBy)
	}

	b.WriteString("\n### Filter\n\n")
	if v.Where == "" {
		b.WriteString("Every unit matches.\n")
	} else {
		fmt.Fprintf(&b, "```sql\n%s\n```\n", v.Where)
		if len(v.Args) > 0 {
			args := make([]string, len(v.Args))
			for i, a := range v.Args {
				args[i] = fmt.Sprintf("`%v`", a)
			}
			fmt.Fprintf(&b, "\nArguments: %s\n", strings.Join(args, ", "))
		}
	}

	if len(v.Joins) > 0 {
		b.WriteString("\n### Joins\n\n")
		for i, j := range v.Joins {
			fmt.Fprintf(&b, "%d. %s\n", i+1, j)
		}
	}

	b.WriteString("\n### Order\n\n")
	for _, s := range v.Sort {
		fmt.Fprintf(&b, "- `%s`\n", s)
	}

	if len(v.Warnings) > 0 {
		b.WriteString("\n### Warnings\n\n")
		for _, w := range v.Warnings {
			fmt.Fprintf(&b, "- **%s**: %s\n", w.Code, w.Message)
		}
	}
	return b.String()
}

var explainCmd = &cobra.Command{
	Use:   "explain [start] [end]",
	Short: "Show how a search would be executed",
	Long: `Plan a search without running it and show the resolved scope, the
unit filter, the joins, and the sort order.

Examples:
  packtrace explain BX10
  packtrace explain P0001 P0050 --json`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := explainFilters.params(args).Request()
		if err != nil {
			return fail(err)
		}

		s, engine, err := openEngine()
		if err != nil {
			return fail(err)
		}
		defer s.Close()

		plan, err := engine.Explain(cmd.Context(), req)
		if err != nil {
			return fail(err)
		}
		view := newPlanView(plan)

		if isJSONOutput() {
			outputSuccessWithWarnings(view, view.Warnings, nil)
			return nil
		}

		out, err := ui.RenderMarkdown(view.markdown(), ui.Stdout())
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		fmt.Fprint(stdout, out)
		return nil
	},
}

func init() {
	explainFilters.register(explainCmd, true)
	rootCmd.AddCommand(explainCmd)
}
