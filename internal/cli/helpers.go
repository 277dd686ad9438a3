package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/packtrace/packtrace/internal/config"
	"github.com/packtrace/packtrace/internal/search"
	"github.com/packtrace/packtrace/internal/store"
)

const timeLayout = "2006-01-02 15:04"

// filterFlags are the search filters shared by search, export, and explain.
type filterFlags struct {
	scope   string
	start   string
	end     string
	typ     string
	from    string
	to      string
	groupBy string
}

func (f *filterFlags) register(cmd *cobra.Command, withGroupBy bool) {
	cmd.Flags().StringVar(&f.scope, "scope", "", "Level to match serials against: serial, module_serial, box, pallet, auto")
	cmd.Flags().StringVar(&f.start, "start", "", "Serial prefix, or range start when --end is set")
	cmd.Flags().StringVar(&f.end, "end", "", "Inclusive range end")
	cmd.Flags().StringVar(&f.typ, "type", "", "Exact unit type")
	cmd.Flags().StringVar(&f.from, "from", "", "Earliest unit timestamp (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.to, "to", "", "Latest unit timestamp (YYYY-MM-DD or RFC 3339)")
	if withGroupBy {
		cmd.Flags().StringVar(&f.groupBy, "group-by", "", "Group rows by container: none, box, pallet")
	}
}

// params builds request parameters. Positional arguments fill the start
// and end serials when the flags are not given.
func (f *filterFlags) params(args []string) search.Params {
	p := search.Params{
		Scope:     f.scope,
		Start:     f.start,
		End:       f.end,
		Type:      f.typ,
		StartDate: f.from,
		EndDate:   f.to,
		GroupBy:   f.groupBy,
	}
	if p.Start == "" && len(args) > 0 {
		p.Start = args[0]
	}
	if p.End == "" && len(args) > 1 {
		p.End = args[1]
	}
	return p
}

func engineOptions(c *config.Config) search.Options {
	return search.Options{
		Logger:            getLogger(),
		StoreTimeout:      c.Search.StoreTimeout.Duration,
		PrefixMismatchLen: c.Search.PrefixMismatchLen,
		DefaultPageSize:   c.Search.DefaultLimit,
		MaxPageSize:       c.Search.MaxLimit,
		ExportLimit:       c.Search.ExportLimit,
	}
}

// openEngine opens the configured database and builds an engine over it.
// The caller closes the returned store.
func openEngine() (*store.Store, *search.Engine, error) {
	c := getConfig()
	if _, err := os.Stat(c.Database); errors.Is(err, os.ErrNotExist) {
		return nil, nil, withCode(ErrDatabaseNotFound,
			fmt.Errorf("database not found: %s", c.Database),
			"Run 'packtrace seed <fixture.yaml>' to create it, or pass --db")
	}
	s, err := store.Open(c.Database)
	if err != nil {
		return nil, nil, withCode(ErrDatabaseError, err, "")
	}
	return s, search.New(s, engineOptions(c)), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
